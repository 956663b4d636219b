//go:build unix

// Package job implements JobManager: the POSIX-style job controller that
// runs external pipelines, tracks process groups, and hands the
// controlling terminal to and from foreground jobs.
//
// Spawning goes through os/exec rather than raw fork/exec: Go forbids
// calling fork(2) without an immediate exec(2), so SysProcAttr is the way
// to land a child in its own process group. Foreground transfer uses the
// TIOCSPGRP ioctl via golang.org/x/sys/unix, called from the parent.
package job

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"os/signal"
	"sync"
	"syscall"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// ProcessStatus is a process's last-observed run state.
type ProcessStatus int

const (
	Running ProcessStatus = iota
	Stopped
	Completed
)

func (s ProcessStatus) String() string {
	switch s {
	case Stopped:
		return "Stopped"
	case Completed:
		return "Completed"
	default:
		return "Running"
	}
}

// Process is a single spawned child within a Job's pipeline.
type Process struct {
	ID     int
	Argv   []string
	cmd    *exec.Cmd
	status ProcessStatus
	exit   int
}

// Status returns the process's last-observed status.
func (p *Process) Status() ProcessStatus { return p.status }

// ExitStatus returns the process's exit code, valid once Status ==
// Completed.
func (p *Process) ExitStatus() int { return p.exit }

// Pid returns the OS process id, or 0 if the process never started.
func (p *Process) Pid() int {
	if p.cmd == nil || p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

// tryWait polls this process's status without blocking.
func (p *Process) tryWait() {
	if p.status == Completed || p.cmd == nil || p.cmd.Process == nil {
		return
	}
	var ws unix.WaitStatus
	pid, err := unix.Wait4(p.cmd.Process.Pid, &ws, unix.WUNTRACED|unix.WNOHANG, nil)
	if err != nil || pid == 0 {
		return
	}
	switch {
	case ws.Stopped():
		p.status = Stopped
	case ws.Exited():
		p.status = Completed
		p.exit = ws.ExitStatus()
	case ws.Signaled():
		p.status = Completed
		p.exit = 128 + int(ws.Signal())
	}
}

func (p *Process) kill() error {
	if p.cmd == nil || p.cmd.Process == nil {
		return nil
	}
	return p.cmd.Process.Kill()
}

// JobID identifies a Job. IDs are monotonically increasing within one
// JobManager and are never reused.
type JobID uint32

// ErrNoSuchJob is returned when a JobID (or "the current job" when none
// exists) does not resolve to a tracked Job.
var ErrNoSuchJob = errors.New("job: no such job")

// Job is a pipeline of processes sharing a process group.
type Job struct {
	ID         JobID
	Input      string
	pgid       int
	processes  []*Process
	lastStatus int
	lastFg     bool
	notified   bool
	tmodes     *term.State
}

// Processes returns the job's processes in pipeline order.
func (j *Job) Processes() []*Process { return j.processes }

// Pgid returns the job's process group id, or 0 if it never had one
// (e.g. a builtin with no spawned stages).
func (j *Job) Pgid() int { return j.pgid }

// Status reports the job's aggregate status: Completed iff every process
// is Completed, Stopped iff every process is Stopped, else Running.
func (j *Job) Status() ProcessStatus {
	if j.allStatus(Completed) {
		return Completed
	}
	if j.allStatus(Stopped) {
		return Stopped
	}
	return Running
}

func (j *Job) allStatus(s ProcessStatus) bool {
	if len(j.processes) == 0 {
		return false
	}
	for _, p := range j.processes {
		if p.status != s {
			return false
		}
	}
	return true
}

// LastStatus returns the most recently observed exit code among the job's
// processes.
func (j *Job) LastStatus() int { return j.lastStatus }

// Display renders the job the way the `jobs` builtin does.
func (j *Job) Display() string {
	return fmt.Sprintf("[%d] %s\t%s", j.ID, j.Status(), j.Input)
}

func (j *Job) tryWait() {
	for _, p := range j.processes {
		wasRunning := p.status == Running
		p.tryWait()
		if wasRunning && p.status == Completed {
			j.lastStatus = p.exit
		}
	}
}

// Spawn describes one pipeline stage to launch.
type Spawn struct {
	Argv   []string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// Env, if non-nil, overrides the inherited process environment.
	Env []string
}

// Manager is JobManager.
type Manager struct {
	mu         sync.Mutex
	jobs       []*Job
	jobCount   uint32
	currentJob *JobID
	termFd     int
	session    string
}

// NewManager returns an empty Manager bound to the given terminal file
// descriptor (typically int(os.Stdin.Fd())).
func NewManager(termFd int) *Manager {
	return &Manager{termFd: termFd, session: uuid.NewString()}
}

// Session returns the manager's per-session tag, surfaced by the `debug`
// builtin for correlating job diagnostics.
func (m *Manager) Session() string { return m.session }

// InitializeJobControl claims the controlling terminal for the shell's own
// process group and ignores the job-control signals. It is a no-op when
// termFd is not a terminal, so piped and test invocations still work.
func (m *Manager) InitializeJobControl() error {
	if !term.IsTerminal(m.termFd) {
		return nil
	}

	shellPgid := unix.Getpgrp()
	for {
		fg, err := unix.IoctlGetInt(m.termFd, unix.TIOCGPGRP)
		if err != nil {
			return fmt.Errorf("job: tcgetpgrp: %w", err)
		}
		if fg == shellPgid {
			break
		}
		_ = unix.Kill(-shellPgid, syscall.SIGTTIN)
	}

	signal.Ignore(syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTSTP, syscall.SIGTTIN, syscall.SIGTTOU)

	pid := unix.Getpid()
	if err := unix.Setpgid(pid, pid); err != nil {
		return fmt.Errorf("job: setpgid: %w", err)
	}
	if err := tcsetpgrp(m.termFd, pid); err != nil {
		return fmt.Errorf("job: failed to grab control of terminal: %w", err)
	}
	return nil
}

func tcsetpgrp(fd, pgid int) error {
	return unix.IoctlSetPointerInt(fd, unix.TIOCSPGRP, pgid)
}

// CreateJob assigns a new monotonically increasing JobID, spawns every
// stage of the pipeline sharing one process group, and tracks the
// resulting Job. foreground controls whether the new pgid is immediately
// given the controlling terminal.
func (m *Manager) CreateJob(input string, stages []Spawn, foreground bool) (*Job, error) {
	m.mu.Lock()
	m.jobCount++
	id := JobID(m.jobCount)
	m.mu.Unlock()

	job := &Job{ID: id, Input: input, lastFg: foreground}
	if term.IsTerminal(m.termFd) {
		if tm, err := term.GetState(m.termFd); err == nil {
			job.tmodes = tm
		}
	}

	pgid := 0
	for i, stage := range stages {
		proc, err := m.spawnOne(stage, pgid, foreground, i)
		if err != nil {
			for _, started := range job.processes {
				_ = started.kill()
			}
			return nil, err
		}
		if pgid == 0 {
			pgid = proc.Pid()
		}
		job.processes = append(job.processes, proc)
	}
	job.pgid = pgid

	m.mu.Lock()
	m.jobs = append(m.jobs, job)
	m.mu.Unlock()
	return job, nil
}

func (m *Manager) spawnOne(s Spawn, pgid int, foreground bool, idx int) (*Process, error) {
	cmd := exec.Command(s.Argv[0], s.Argv[1:]...)
	cmd.Stdin = s.Stdin
	cmd.Stdout = s.Stdout
	cmd.Stderr = s.Stderr
	if s.Env != nil {
		cmd.Env = s.Env
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
		Pgid:    pgid,
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("job: spawn %q: %w", s.Argv[0], err)
	}

	childPgid := pgid
	if childPgid == 0 {
		childPgid = cmd.Process.Pid
	}
	if foreground && term.IsTerminal(m.termFd) {
		_ = tcsetpgrp(m.termFd, childPgid)
	}

	return &Process{ID: idx, Argv: s.Argv, cmd: cmd}, nil
}

// PutJobInForeground transfers the controlling terminal to job's process
// group, optionally sends SIGCONT first, and blocks until the job stops
// or completes. The terminal's previous foreground pgid and attributes are
// restored once the job leaves the foreground, via a deferred guard.
func (m *Manager) PutJobInForeground(id JobID, cont bool) (int, error) {
	job, err := m.find(id)
	if err != nil {
		return 0, err
	}
	job.lastFg = true

	if term.IsTerminal(m.termFd) && job.pgid != 0 {
		prevPgid, _ := unix.IoctlGetInt(m.termFd, unix.TIOCGPGRP)
		prevModes, _ := term.GetState(m.termFd)
		_ = tcsetpgrp(m.termFd, job.pgid)
		defer func() {
			_ = tcsetpgrp(m.termFd, prevPgid)
			if tm, err := term.GetState(m.termFd); err == nil {
				job.tmodes = tm
			}
			if prevModes != nil {
				_ = term.Restore(m.termFd, prevModes)
			}
		}()
	}

	if cont {
		if job.tmodes != nil {
			_ = term.Restore(m.termFd, job.tmodes)
		}
		if job.pgid != 0 {
			_ = unix.Kill(-job.pgid, syscall.SIGCONT)
		}
	}

	return m.WaitForJob(id)
}

// WaitForJob blocks, polling every tracked job (not just id) so sibling
// jobs' statuses stay current, until id's job stops or completes. It
// returns the job's last observed exit status.
func (m *Manager) WaitForJob(id JobID) (int, error) {
	for {
		job, err := m.find(id)
		if err != nil {
			return 0, err
		}
		st := job.Status()
		if st == Stopped || st == Completed {
			return job.lastStatus, nil
		}
		m.pollAll()
	}
}

// PutJobInBackground marks job as backgrounded, optionally continuing it,
// and makes it the "current job" cursor.
func (m *Manager) PutJobInBackground(id JobID, cont bool) error {
	job, err := m.find(id)
	if err != nil {
		return err
	}
	job.lastFg = false
	if cont && job.pgid != 0 {
		if err := unix.Kill(-job.pgid, syscall.SIGCONT); err != nil {
			return fmt.Errorf("job: SIGCONT: %w", err)
		}
	}
	m.mu.Lock()
	m.currentJob = &id
	m.mu.Unlock()
	return nil
}

// KillJob sends SIGKILL to every process in job.
func (m *Manager) KillJob(id JobID) error {
	job, err := m.find(id)
	if err != nil {
		return err
	}
	for _, p := range job.processes {
		if err := p.kill(); err != nil {
			return err
		}
	}
	return nil
}

// Jobs returns every currently tracked job, in insertion order.
func (m *Manager) Jobs() []*Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Job, len(m.jobs))
	copy(out, m.jobs)
	return out
}

func (m *Manager) pollAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, j := range m.jobs {
		j.tryWait()
	}
}

func (m *Manager) find(id JobID) (*Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, j := range m.jobs {
		if j.ID == id {
			return j, nil
		}
	}
	return nil, fmt.Errorf("%w: %d", ErrNoSuchJob, id)
}

// DoJobNotification polls every job, prints a status line for jobs that
// completed in the background or newly stopped, and removes completed
// jobs. It returns the exit statuses of every job that completed during
// this pass, for the ShellLoop to fire JobExit with.
func (m *Manager) DoJobNotification(out io.Writer) []int {
	m.pollAll()

	m.mu.Lock()
	defer m.mu.Unlock()

	var completed []int
	var kept []*Job
	for _, j := range m.jobs {
		switch {
		case j.Status() == Completed:
			if !j.lastFg {
				fmt.Fprintln(out, j.Display())
			}
			completed = append(completed, j.lastStatus)
		case j.Status() == Stopped && !j.notified:
			fmt.Fprintln(out, j.Display())
			j.notified = true
			kept = append(kept, j)
		default:
			kept = append(kept, j)
		}
	}
	m.jobs = kept
	return completed
}
