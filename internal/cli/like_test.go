package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tessro/cadence/internal/driver"
	"github.com/tessro/cadence/internal/remote"
	"github.com/tessro/cadence/internal/session"
	"github.com/tessro/cadence/internal/store"
)

// unlikingRepo answers every toggle with "not liked".
type unlikingRepo struct {
	*remote.Memory
}

func (unlikingRepo) Toggle(context.Context, string) (bool, error) {
	return false, nil
}

func runCLI(t *testing.T, deps session.Deps, args ...string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.toml")
	conf := "[storage]\nbackend = \"" + store.BackendMemory + "\"\n\n[favorites]\nrefresh_on_start = false\n"
	if err := os.WriteFile(path, []byte(conf), 0o600); err != nil {
		t.Fatal(err)
	}

	prev := sessionDeps
	sessionDeps = func() session.Deps { return deps }
	t.Cleanup(func() {
		sessionDeps = prev
		jsonOut = false
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", path}, args...))
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("%v: %v\n%s", args, err, out.String())
	}
	return out.String()
}

func TestLikeReportsServerState(t *testing.T) {
	repo := unlikingRepo{remote.NewMemory()}
	deps := session.Deps{Likes: repo, Catalog: repo, Driver: driver.NewNull(nil)}

	out := runCLI(t, deps, "like", "42")
	if !strings.Contains(out, "Unliked 42") {
		t.Errorf("output = %q, want the server's unliked state", out)
	}

	out = runCLI(t, deps, "--json", "like", "42")
	if !strings.Contains(out, `"liked":false`) {
		t.Errorf("JSON output = %q, want liked false", out)
	}
}

func TestLikeOffline(t *testing.T) {
	repo := remote.NewMemory()
	deps := session.Deps{Likes: repo, Catalog: repo, Driver: driver.NewNull(nil)}

	out := runCLI(t, deps, "like", "42")
	if !strings.Contains(out, "♥ Liked 42") {
		t.Errorf("output = %q", out)
	}
}
