package policy

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValid(t *testing.T) {
	p := Default()
	require.NoError(t, p.Validate())
	assert.Equal(t, 0.5, p.BudgetFraction)
	assert.Equal(t, 0.01, p.ReclaimFraction)
	assert.True(t, p.ReclaimSource)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Policy)
	}{
		{"zero budget", func(p *Policy) { p.BudgetFraction = 0 }},
		{"budget above one", func(p *Policy) { p.BudgetFraction = 1.5 }},
		{"zero reclaim", func(p *Policy) { p.ReclaimFraction = 0 }},
		{"negative reclaim", func(p *Policy) { p.ReclaimFraction = -0.1 }},
		{"negative cost", func(p *Policy) { p.BytesPerVertex = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Default()
			tt.mutate(&p)
			assert.ErrorIs(t, p.Validate(), ErrInvalidPolicy)
		})
	}
}

func TestSizeEstimate(t *testing.T) {
	p := Default()
	assert.Equal(t, int64(10*32), p.SizeEstimate(Counts{Commands: 10}))
	assert.Equal(t, int64(4*24+2*24+2*24), p.SizeEstimate(Counts{Vertices: 4, Normals: 2, Faces: 2}))
	assert.Zero(t, p.SizeEstimate(Counts{}))
}

func TestDecisions(t *testing.T) {
	p := Default()
	assert.True(t, p.ShouldCompile(49, 100))
	assert.False(t, p.ShouldCompile(50, 100))
	assert.False(t, p.ShouldCompile(1, 0))

	assert.True(t, p.ShouldReclaim(2, 100))
	assert.False(t, p.ShouldReclaim(1, 100))
	p.ReclaimSource = false
	assert.False(t, p.ShouldReclaim(2, 100))
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		input  string
		want   func(*Policy)
	}{
		{
			name:   "toml partial",
			format: FormatTOML,
			input:  "budget_fraction = 0.25\nreclaim_source = false\n",
			want: func(p *Policy) {
				p.BudgetFraction = 0.25
				p.ReclaimSource = false
			},
		},
		{
			name:   "yaml partial",
			format: FormatYAML,
			input:  "reclaim_fraction: 0.05\nbytes_per_face: 4000\n",
			want: func(p *Policy) {
				p.ReclaimFraction = 0.05
				p.BytesPerFace = 4000
			},
		},
		{
			name:   "yaml empty",
			format: FormatYAML,
			input:  "",
			want:   func(*Policy) {},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(strings.NewReader(tt.input), tt.format)
			require.NoError(t, err)
			want := Default()
			tt.want(&want)
			assert.Equal(t, want, got)
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		input  string
	}{
		{"toml unknown key", FormatTOML, "budget = 0.5\n"},
		{"yaml unknown key", FormatYAML, "budget: 0.5\n"},
		{"toml out of range", FormatTOML, "budget_fraction = 3.0\n"},
		{"yaml wrong type", FormatYAML, "reclaim_source: maybe\n"},
		{"unknown format", Format(9), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input), tt.format)
			assert.Error(t, err)
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	p := Default()
	p.BudgetFraction = 0.3
	p.BytesPerCommand = 16
	for _, f := range []Format{FormatTOML, FormatYAML} {
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, p, f))
		got, err := Decode(&buf, f)
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
}

func TestFormatOf(t *testing.T) {
	for path, want := range map[string]Format{"a.toml": FormatTOML, "b.yaml": FormatYAML, "C.YML": FormatYAML} {
		got, err := FormatOf(path)
		require.NoError(t, err)
		assert.Equal(t, want, got, path)
	}
	_, err := FormatOf("dm.json")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dm.toml")
	require.NoError(t, os.WriteFile(path, []byte("budget_fraction = 0.4\n"), 0o600))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.4, p.BudgetFraction)

	_, err = Load(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("budget_fraction: 0\n"), 0o600))
	_, err = Load(bad)
	assert.ErrorIs(t, err, ErrInvalidPolicy)
	assert.ErrorContains(t, err, "bad.yaml")
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dm.yaml")
	require.NoError(t, os.WriteFile(path, []byte("budget_fraction: 0.5\n"), 0o600))

	applied := make(chan Policy, 4)
	errs := make(chan error, 4)
	w, err := Watch(path, func(p Policy) {
		select {
		case applied <- p:
		default:
		}
	}, func(err error) {
		select {
		case errs <- err:
		default:
		}
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	assert.Equal(t, filepath.Clean(path), w.Path())

	// Unrelated files in the directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1\n"), 0o600))
	require.NoError(t, os.WriteFile(path, []byte("budget_fraction: 0.2\n"), 0o600))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case p := <-applied:
			if p.BudgetFraction == 0.2 {
				require.NoError(t, w.Close())
				require.NoError(t, w.Close())
				return
			}
		case err := <-errs:
			// A write may be observed before it is complete.
			t.Logf("watch error: %v", err)
		case <-deadline:
			t.Fatal("policy change not applied")
		}
	}
}

func TestWatchErrors(t *testing.T) {
	_, err := Watch("dm.toml", nil, nil)
	assert.Error(t, err)
	_, err = Watch("dm.ini", func(Policy) {}, nil)
	assert.ErrorIs(t, err, ErrUnknownFormat)
	_, err = Watch(filepath.Join(t.TempDir(), "missing", "dm.toml"), func(Policy) {}, nil)
	assert.Error(t, err)
}
