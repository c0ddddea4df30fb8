package compiler

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/bmatcuk/doublestar/v4"
)

// BuiltinSource is the Source of the embedded profiles.
const BuiltinSource = "builtin"

// DefaultProfile is used when no profile is named.
const DefaultProfile = "cpidr"

//go:embed schema.cue
var schemaSource []byte

//go:embed profiles/*.cue
var builtinFS embed.FS

// Registry holds compiled profiles by name. The embedded profiles are
// always present; profiles loaded from files may replace them.
type Registry struct {
	ctx      *cue.Context
	schema   cue.Value
	profiles map[string]*Profile
}

// NewRegistry compiles the schema and the embedded profiles.
func NewRegistry() (*Registry, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileBytes(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	r := &Registry{ctx: ctx, schema: schema, profiles: make(map[string]*Profile)}

	files, err := fs.Glob(builtinFS, "profiles/*.cue")
	if err != nil {
		return nil, err
	}
	for _, name := range files {
		src, err := builtinFS.ReadFile(name)
		if err != nil {
			return nil, err
		}
		if _, err := r.load(name, src, BuiltinSource); err != nil {
			return nil, fmt.Errorf("builtin profiles: %w", err)
		}
	}
	return r, nil
}

// LoadBytes compiles the profiles of one CUE source. A profile may replace
// a builtin of the same name but not another loaded profile.
func (r *Registry) LoadBytes(filename string, src []byte) ([]*Profile, error) {
	return r.load(filename, src, filename)
}

// LoadFile compiles the profiles of one file.
func (r *Registry) LoadFile(path string) ([]*Profile, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile file: %w", err)
	}
	return r.LoadBytes(path, src)
}

// LoadDir compiles every .cue file below dir, in lexical order.
func (r *Registry) LoadDir(dir string) ([]*Profile, error) {
	matches, err := doublestar.Glob(os.DirFS(dir), "**/*.cue")
	if err != nil {
		return nil, fmt.Errorf("scan profiles dir: %w", err)
	}
	slices.Sort(matches)

	var loaded []*Profile
	for _, m := range matches {
		ps, err := r.LoadFile(filepath.Join(dir, filepath.FromSlash(m)))
		if err != nil {
			return nil, err
		}
		loaded = append(loaded, ps...)
	}
	return loaded, nil
}

func (r *Registry) load(filename string, src []byte, source string) ([]*Profile, error) {
	v := r.ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	u := r.schema.Unify(v)
	if err := u.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	iter, err := u.LookupPath(cue.ParsePath("profile")).Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var loaded []*Profile
	for iter.Next() {
		name := iter.Label()
		if prev, ok := r.profiles[name]; ok && prev.Source != BuiltinSource {
			return nil, &CompileError{
				Field:   "profile." + name,
				Message: fmt.Sprintf("already defined in %s", prev.Source),
				Pos:     iter.Value().Pos(),
			}
		}
		p, err := CompileProfile(name, iter.Value())
		if err != nil {
			return nil, err
		}
		p.Source = source
		r.profiles[name] = p
		loaded = append(loaded, p)
	}
	return loaded, nil
}

// Get returns the profile as written, without its ancestors applied.
func (r *Registry) Get(name string) (*Profile, bool) {
	p, ok := r.profiles[name]
	return p, ok
}

// Names returns the profile names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.profiles))
	for name := range r.profiles {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Profiles returns every profile as written, sorted by name.
func (r *Registry) Profiles() []Profile {
	out := make([]Profile, 0, len(r.profiles))
	for _, name := range r.Names() {
		out = append(out, *r.profiles[name])
	}
	return out
}

// Resolve returns the named profile with its extends chain applied, root
// ancestor first: the nearest profile naming a table wins, speech and
// distinct are on if any profile of the chain turns them on, and a later
// enable cancels an earlier disable of the same code (and the other way
// round).
func (r *Registry) Resolve(name string) (*Profile, error) {
	if name == "" {
		name = DefaultProfile
	}

	var chain []*Profile
	var path []string
	for n := name; n != ""; {
		if slices.Contains(path, n) {
			return nil, &CompileError{
				Field:   "extends",
				Message: fmt.Sprintf("profile %q has an extends cycle: %s", name, strings.Join(append(path, n), " -> ")),
			}
		}
		p, ok := r.profiles[n]
		if !ok {
			if n == name {
				return nil, &CompileError{
					Field:   "profile",
					Message: fmt.Sprintf("unknown profile %q (known: %s)", name, strings.Join(r.Names(), ", ")),
				}
			}
			return nil, &CompileError{
				Field:   "extends",
				Message: fmt.Sprintf("profile %q extends unknown profile %q", path[len(path)-1], n),
			}
		}
		path = append(path, n)
		chain = append(chain, p)
		n = p.Extends
	}

	head := chain[0]
	out := &Profile{
		Name:        head.Name,
		Description: head.Description,
		Extends:     head.Extends,
		Source:      head.Source,
	}
	for _, p := range slices.Backward(chain) {
		if p.Table != "" {
			out.Table = p.Table
		}
		out.Distinct = out.Distinct || p.Distinct
		out.apply(p.Speech, p.Enable, p.Disable)
	}
	return out, nil
}
