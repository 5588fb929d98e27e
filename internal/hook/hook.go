package hook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/maxvaer/hostprobe/internal/output"
	"github.com/maxvaer/hostprobe/internal/probe"
)

// verdictJSON is the JSON payload sent to the hook command via stdin.
type verdictJSON struct {
	Check    string `json:"check"`
	Kind     string `json:"kind"`
	Target   string `json:"target"`
	Verdict  string `json:"verdict"`
	Reason   string `json:"reason"`
	Status   int    `json:"status,omitempty"`
	Banner   string `json:"banner,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

// Runner executes a shell command for each present verdict.
type Runner struct {
	cmd   string
	quiet bool
}

// NewRunner creates a hook runner. cmd is the shell command to execute.
func NewRunner(cmd string, quiet bool) *Runner {
	return &Runner{cmd: cmd, quiet: quiet}
}

// Run executes the hook command with the verdict as JSON on stdin.
// The command runs with a 30-second timeout. Errors are logged but
// do not halt the scan.
func (r *Runner) Run(v *probe.Verdict) {
	payload := verdictJSON{
		Check:    v.Spec.Label,
		Kind:     v.Spec.Kind.String(),
		Target:   output.TargetOf(&v.Spec),
		Verdict:  v.Kind.String(),
		Reason:   v.Reason,
		Status:   v.Outcome.StatusCode,
		Banner:   v.Outcome.Banner,
		Redirect: v.Outcome.Redirect,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[hook] marshal error: %v\n", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var cmd *exec.Cmd
	shell, args := shellCommand()
	// Replace {target}, {check}, {verdict} placeholders in the command.
	expanded := r.cmd
	expanded = strings.ReplaceAll(expanded, "{target}", payload.Target)
	expanded = strings.ReplaceAll(expanded, "{check}", payload.Check)
	expanded = strings.ReplaceAll(expanded, "{verdict}", payload.Verdict)
	expanded = strings.ReplaceAll(expanded, "{status}", fmt.Sprintf("%d", payload.Status))
	expanded = strings.ReplaceAll(expanded, "{kind}", payload.Kind)
	expanded = strings.ReplaceAll(expanded, "{reason}", payload.Reason)

	cmd = exec.CommandContext(ctx, shell, append(args, expanded)...)
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stderr = os.Stderr
	// The same fields again as environment, for scripts that do not
	// parse stdin.
	cmd.Env = append(os.Environ(),
		"HOSTPROBE_CHECK="+payload.Check,
		"HOSTPROBE_TARGET="+payload.Target,
		"HOSTPROBE_VERDICT="+payload.Verdict,
		fmt.Sprintf("HOSTPROBE_STATUS=%d", payload.Status),
	)

	out, err := cmd.Output()
	if err != nil {
		if !r.quiet {
			fmt.Fprintf(os.Stderr, "[hook] error: %v\n", err)
		}
		return
	}

	if len(out) > 0 && !r.quiet {
		fmt.Fprintf(os.Stderr, "[hook] %s", out)
	}
}

func shellCommand() (string, []string) {
	if runtime.GOOS == "windows" {
		return "cmd", []string{"/C"}
	}
	return "sh", []string{"-c"}
}
