// Package probe checks whether a documented binary actually resolves and
// answers on the local system. It is used only by executable-category rules
// and stays inert unless those are explicitly enabled.
package probe

import (
	"context"
	"fmt"
	"os/exec"
	"time"
)

// FailureReason classifies why a probe failed.
type FailureReason string

const (
	ReasonNotFound FailureReason = "not-found"
	ReasonTimeout  FailureReason = "timeout"
	ReasonExec     FailureReason = "exec-error"
)

// Failure is a structured probe failure.
type Failure struct {
	Binary string
	Reason FailureReason
	Detail string
}

func (f *Failure) Error() string {
	return fmt.Sprintf("probe %s: %s (%s)", f.Binary, f.Reason, f.Detail)
}

// Prober resolves a binary name or path within a timeout.
type Prober interface {
	Probe(ctx context.Context, binary string, timeout time.Duration) error
}

// ExecProber probes via the process table: PATH lookup, then an optional
// no-op invocation to confirm the binary answers.
type ExecProber struct {
	// RunVersion invokes `binary --version` after the PATH lookup. Off by
	// default: a lookup is enough for lint purposes and never runs code.
	RunVersion bool
}

// Probe implements Prober.
func (p *ExecProber) Probe(ctx context.Context, binary string, timeout time.Duration) error {
	path, err := exec.LookPath(binary)
	if err != nil {
		return &Failure{Binary: binary, Reason: ReasonNotFound, Detail: err.Error()}
	}
	if !p.RunVersion {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	cmd := exec.CommandContext(ctx, path, "--version")
	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return &Failure{Binary: binary, Reason: ReasonTimeout, Detail: timeout.String()}
		}
		return &Failure{Binary: binary, Reason: ReasonExec, Detail: err.Error()}
	}
	return nil
}
