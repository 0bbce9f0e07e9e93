package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/matzehuels/stackrules/pkg/deps"
	"github.com/matzehuels/stackrules/pkg/integrations"
	"github.com/matzehuels/stackrules/pkg/integrations/gemini"
	"github.com/matzehuels/stackrules/pkg/integrations/github"
)

// fakeWeb serves llms.txt bodies by URL; anything else is a 404.
type fakeWeb struct {
	bodies map[string]string
	err    error
	calls  atomic.Int32
}

func (f *fakeWeb) FetchText(_ context.Context, url string) (string, error) {
	f.calls.Add(1)
	if b, ok := f.bodies[url]; ok {
		return b, nil
	}
	if f.err != nil {
		return "", f.err
	}
	return "", fmt.Errorf("%w: %s", integrations.ErrNotFound, url)
}

// fakeForge is a single repository whose tree is the keys of files.
type fakeForge struct {
	files map[string]string
	calls atomic.Int32
}

func (f *fakeForge) ListDirectory(_ context.Context, _, _, dir string) ([]github.ContentItem, error) {
	f.calls.Add(1)
	seen := make(map[string]github.ContentItem)
	prefix := ""
	if dir != "" {
		prefix = strings.TrimSuffix(dir, "/") + "/"
	}
	for p := range f.files {
		rest, ok := strings.CutPrefix(p, prefix)
		if !ok {
			continue
		}
		name, _, isDir := strings.Cut(rest, "/")
		item := github.ContentItem{Name: name, Path: path.Join(dir, name), Type: "file"}
		if isDir {
			item.Type = "dir"
		}
		seen[name] = item
	}
	if len(seen) == 0 {
		return nil, fmt.Errorf("%w: %s", integrations.ErrNotFound, dir)
	}
	out := make([]github.ContentItem, 0, len(seen))
	for _, item := range seen {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeForge) GetReadme(ctx context.Context, owner, repo string) (string, error) {
	return f.FetchFile(ctx, owner, repo, "README.md")
}

func (f *fakeForge) FetchFile(_ context.Context, _, _, p string) (string, error) {
	f.calls.Add(1)
	if s, ok := f.files[p]; ok {
		return s, nil
	}
	return "", fmt.Errorf("%w: %s", integrations.ErrNotFound, p)
}

// fakeModel returns a canned response and records the last prompt.
type fakeModel struct {
	resp   string
	err    error
	calls  atomic.Int32
	mu     sync.Mutex
	prompt string
}

func (f *fakeModel) Complete(_ context.Context, prompt string, _ *gemini.Schema) (json.RawMessage, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.prompt = prompt
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return json.RawMessage(f.resp), nil
}

// fakeFetcher serves npm metadata from memory and tracks parallelism.
type fakeFetcher struct {
	metas map[string]deps.PackageMetadata
	fail  map[string]error
	delay time.Duration

	calls    atomic.Int32
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func (f *fakeFetcher) CanFetch(_ string, t deps.RegistryType) bool { return t == deps.RegistryNPM }

func (f *fakeFetcher) FetchMetadata(ctx context.Context, name, version string, _ bool) (*deps.PackageMetadata, error) {
	f.calls.Add(1)
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		m := f.maxSeen.Load()
		if n <= m || f.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err, ok := f.fail[name]; ok {
		return nil, err
	}
	m, ok := f.metas[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", integrations.ErrNotFound, name)
	}
	if version != "" {
		m.Version = version
	}
	return deps.NewPackageMetadata(m), nil
}

// stubStrategy returns a fixed result or panics.
type stubStrategy struct {
	tier   Tier
	result TierResult
	panics bool
	calls  atomic.Int32
}

func (s *stubStrategy) Tier() Tier { return s.tier }

func (s *stubStrategy) Discover(context.Context, deps.PackageMetadata) TierResult {
	s.calls.Add(1)
	if s.panics {
		panic("boom")
	}
	return s.result
}
