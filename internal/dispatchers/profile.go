package dispatchers

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/pprof"
	"strings"
)

// ProfilePath returns where a CPU profile for command is written.
func ProfilePath(dir, command string) string {
	name := strings.NewReplacer(" ", "_", string(filepath.Separator), "_").Replace(command)
	return filepath.Join(dir, "mach_profile_"+name+".pprof")
}

// profileCall runs call under the CPU profiler and writes the profile to dir.
func profileCall(out io.Writer, dir, command string, call func() (any, error)) (any, error) {
	path := ProfilePath(dir, command)
	f, err := os.Create(path)
	if err != nil {
		return nil, &FrameworkError{Message: "create profile", Err: err}
	}
	defer func() { _ = f.Close() }()

	if err := pprof.StartCPUProfile(f); err != nil {
		return nil, &FrameworkError{Message: "start profiler", Err: err}
	}

	result, callErr := func() (any, error) {
		defer pprof.StopCPUProfile()
		return call()
	}()

	fmt.Fprintf(out, "CPU profile written to %s\n", path)
	fmt.Fprintf(out, "View it with: go tool pprof -http=localhost:8080 %s\n", path)
	return result, callErr
}

// Debugger runs call under a step debugger.
type Debugger func(inst *Instance, call func() (any, error)) (any, error)

// WaitForDebugger prints how to attach dlv to this process and waits for
// Enter before running call.
func WaitForDebugger(inst *Instance, call func() (any, error)) (any, error) {
	fmt.Fprintf(inst.Stderr(), "Debugging %s. Attach with:\n\n    dlv attach %d\n\nthen press Enter to continue.\n",
		inst.Descriptor().FullName(), os.Getpid())
	_, _ = bufio.NewReader(inst.Stdin()).ReadString('\n')
	return call()
}
