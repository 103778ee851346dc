package supervisor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"syscall"
)

// SlotEnv worker jarayoniga o'z slot raqamini bildiradi
const SlotEnv = "RELAYBOT_WORKER_SLOT"

// ExecSpawner joriy binary ni worker rejimida qayta ishga tushiradi
type ExecSpawner struct {
	Path string
	Args []string
	Env  []string
}

// NewExecSpawner os.Executable() ni args bilan ishga tushiradigan spawner
func NewExecSpawner(args ...string) (*ExecSpawner, error) {
	path, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("executable yo'lini aniqlab bo'lmadi: %w", err)
	}
	return &ExecSpawner{Path: path, Args: args}, nil
}

// Spawn worker jarayonini boshlaydi; stdout/stderr koordinatorga ulanadi
func (e *ExecSpawner) Spawn(ctx context.Context, slot int) (Process, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	args := append(append([]string(nil), e.Args...), "--slot", strconv.Itoa(slot))
	cmd := exec.Command(e.Path, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(append(os.Environ(), e.Env...), fmt.Sprintf("%s=%d", SlotEnv, slot))

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start worker %d: %w", slot, err)
	}
	return &execProcess{cmd: cmd}, nil
}

type execProcess struct {
	cmd *exec.Cmd
}

func (p *execProcess) Pid() int {
	return p.cmd.Process.Pid
}

func (p *execProcess) Wait() error {
	return p.cmd.Wait()
}

// Stop SIGTERM; signal qo'llab-quvvatlanmasa Kill
func (p *execProcess) Stop() error {
	if err := p.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		return p.cmd.Process.Kill()
	}
	return nil
}

func (p *execProcess) Kill() error {
	return p.cmd.Process.Kill()
}
