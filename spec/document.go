package spec

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/gr1synth/symbolic"
)

// Document is the on-disk YAML form of a specification.
//
//	env: [req]
//	sys: [grant]
//	init_mode: ALL_ENV_EXIST_SYS_INIT
//	sys_init: "!grant"
//	sys_trans: ["implies(req, grant')"]
//	env_goals: ["!req"]
//	sys_goals: ["grant"]
//
// Undeclared init sets read as true. The init mode defaults to
// ALL_ENV_EXIST_SYS_INIT.
type Document struct {
	Env      []string `yaml:"env,omitempty" validate:"required_without=Sys,unique,dive,varname"`
	Sys      []string `yaml:"sys,omitempty" validate:"required_without=Env,unique,dive,varname"`
	InitMode string   `yaml:"init_mode,omitempty"`
	EnvInit  string   `yaml:"env_init,omitempty"`
	SysInit  string   `yaml:"sys_init,omitempty"`
	EnvTrans []string `yaml:"env_trans,omitempty" validate:"dive,required"`
	SysTrans []string `yaml:"sys_trans,omitempty" validate:"dive,required"`
	EnvGoals []string `yaml:"env_goals,omitempty" validate:"dive,required"`
	SysGoals []string `yaml:"sys_goals,omitempty" validate:"dive,required"`
}

var (
	docValidate = validator.New()
	varNameRe   = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

func init() {
	_ = docValidate.RegisterValidation("varname", func(fl validator.FieldLevel) bool {
		name := fl.Field().String()
		return varNameRe.MatchString(name) && name != primedFunc
	})
}

// Validate checks the document shape. Formula text is checked by Build.
func (d *Document) Validate() error {
	if err := docValidate.Struct(d); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSpec, err)
	}
	if _, err := ParseInitMode(d.InitMode); err != nil {
		return err
	}
	seen := make(map[string]bool, len(d.Env)+len(d.Sys))
	for _, v := range append(append([]string(nil), d.Env...), d.Sys...) {
		if seen[v] {
			return fmt.Errorf("%w: variable %q is both env and sys", ErrInvalidSpec, v)
		}
		seen[v] = true
	}
	return nil
}

// ParseDocument decodes and validates a YAML document.
func ParseDocument(r io.Reader) (*Document, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var d Document
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrInvalidSpec, err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Marshal encodes d as YAML.
func (d *Document) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Digest returns a hex SHA-256 over the canonical YAML encoding of d.
func (d *Document) Digest() (string, error) {
	b, err := d.Marshal()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// Clone returns a deep copy of d.
func (d *Document) Clone() *Document {
	c := *d
	c.Env = append([]string(nil), d.Env...)
	c.Sys = append([]string(nil), d.Sys...)
	c.EnvTrans = append([]string(nil), d.EnvTrans...)
	c.SysTrans = append([]string(nil), d.SysTrans...)
	c.EnvGoals = append([]string(nil), d.EnvGoals...)
	c.SysGoals = append([]string(nil), d.SysGoals...)
	return &c
}

// InsertSysGoal returns a copy of d with goal text inserted at position i.
func (d *Document) InsertSysGoal(i int, goal string) (*Document, error) {
	if i < 0 || i > len(d.SysGoals) {
		return nil, fmt.Errorf("%w: goal position %d out of [0,%d]", ErrInvalidSpec, i, len(d.SysGoals))
	}
	c := d.Clone()
	c.SysGoals = append(c.SysGoals[:i], append([]string{goal}, d.SysGoals[i:]...)...)
	return c, nil
}

// RemoveSysGoal returns a copy of d without goal i.
func (d *Document) RemoveSysGoal(i int) (*Document, error) {
	if i < 0 || i >= len(d.SysGoals) {
		return nil, fmt.Errorf("%w: goal position %d out of [0,%d)", ErrInvalidSpec, i, len(d.SysGoals))
	}
	c := d.Clone()
	c.SysGoals = append(c.SysGoals[:i], d.SysGoals[i+1:]...)
	return c, nil
}

// Build compiles every formula of d into a Spec over a fresh Manager.
func (d *Document) Build(opts ...symbolic.Option) (*Spec, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	mode, err := ParseInitMode(d.InitMode)
	if err != nil {
		return nil, err
	}
	m, err := symbolic.New(d.Env, d.Sys, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpec, err)
	}

	specOpts := []Option{WithInitMode(mode)}
	if d.EnvInit != "" {
		s, err := Compile(m, d.EnvInit, ScopeState)
		if err != nil {
			return nil, fmt.Errorf("env_init: %w", err)
		}
		specOpts = append(specOpts, WithEnvInit(s))
	}
	if d.SysInit != "" {
		s, err := Compile(m, d.SysInit, ScopeState)
		if err != nil {
			return nil, fmt.Errorf("sys_init: %w", err)
		}
		specOpts = append(specOpts, WithSysInit(s))
	}

	lists := []struct {
		name  string
		src   []string
		scope Scope
		with  func(...symbolic.Set) Option
	}{
		{"env_trans", d.EnvTrans, ScopeEnvTrans, WithEnvTrans},
		{"sys_trans", d.SysTrans, ScopeSysTrans, WithSysTrans},
		{"env_goals", d.EnvGoals, ScopeState, WithEnvGoals},
		{"sys_goals", d.SysGoals, ScopeState, WithSysGoals},
	}
	for _, l := range lists {
		sets, err := CompileAll(m, l.src, l.scope)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", l.name, err)
		}
		specOpts = append(specOpts, l.with(sets...))
	}
	return New(m, specOpts...)
}

// CompileAll compiles each formula in srcs.
func CompileAll(m *symbolic.Manager, srcs []string, scope Scope) ([]symbolic.Set, error) {
	out := make([]symbolic.Set, 0, len(srcs))
	for i, src := range srcs {
		s, err := Compile(m, src, scope)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		out = append(out, s)
	}
	return out, nil
}

// Load reads a YAML document from r and builds its Spec.
func Load(r io.Reader, opts ...symbolic.Option) (*Spec, *Document, error) {
	d, err := ParseDocument(r)
	if err != nil {
		return nil, nil, err
	}
	s, err := d.Build(opts...)
	if err != nil {
		return nil, nil, err
	}
	return s, d, nil
}

// LoadFile is Load over a file path.
func LoadFile(path string, opts ...symbolic.Option) (*Spec, *Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return Load(f, opts...)
}
