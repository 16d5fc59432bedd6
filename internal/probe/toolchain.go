package probe

import (
	"context"
	"os/exec"
	"sync"
	"time"

	"github.com/termai/termai/internal/patterns"
	"github.com/termai/termai/internal/stringutil"
)

// defaultVersionTimeout bounds each version query.
const defaultVersionTimeout = 3 * time.Second

// toolchain runs the fixed version queries in parallel and collects
// name→version for every binary that responded. Missing binaries are
// silently omitted.
func (p *Prober) toolchain(ctx context.Context) map[string]string {
	timeout := p.versionTimeout
	if timeout <= 0 {
		timeout = defaultVersionTimeout
	}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		versions = make(map[string]string)
	)

	for _, tp := range patterns.ToolchainProbes {
		wg.Add(1)
		go func(tp patterns.ToolchainProbe) {
			defer wg.Done()

			if _, err := exec.LookPath(tp.Binary); err != nil {
				return
			}

			qctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			// Some tools (java, python2) print the version to stderr.
			out, _ := exec.CommandContext(qctx, tp.Binary, tp.Args...).CombinedOutput()
			version := stringutil.FirstVersionToken(string(out))
			if version == "" {
				return
			}

			mu.Lock()
			versions[tp.Name] = version
			mu.Unlock()
		}(tp)
	}

	wg.Wait()
	return versions
}
