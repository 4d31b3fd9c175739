package supervisor

import "os/exec"

// CommandProbe checks whether an executable is installed on the host.
type CommandProbe struct {
	lookPath func(string) (string, error)
}

// NewCommandProbe returns a probe backed by PATH resolution.
func NewCommandProbe() *CommandProbe { return &CommandProbe{lookPath: exec.LookPath} }

// Exists reports whether name resolves to an executable. Absence is a normal
// false outcome, not an error.
func (p *CommandProbe) Exists(name string) bool {
	_, ok := p.Resolve(name)
	return ok
}

// Resolve returns the resolved path of name, if any.
func (p *CommandProbe) Resolve(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	lp := p.lookPath
	if lp == nil {
		lp = exec.LookPath
	}
	path, err := lp(name)
	if err != nil {
		return "", false
	}
	return path, true
}
