package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nguyentantai21042004/clipnorm/internal/codec/codectest"
	"github.com/nguyentantai21042004/clipnorm/internal/config"
	"github.com/nguyentantai21042004/clipnorm/internal/failure"
	"github.com/nguyentantai21042004/clipnorm/internal/logger"
	"github.com/nguyentantai21042004/clipnorm/internal/processor"
)

type env struct {
	in, out string
	fake    *codectest.Service
	runner  Runner
}

func newEnv(t *testing.T, workers int) *env {
	t.Helper()
	root := t.TempDir()
	e := &env{
		in:   filepath.Join(root, "in"),
		out:  filepath.Join(root, "out"),
		fake: codectest.New(nil),
	}
	mkdir(t, e.in)
	mkdir(t, e.out)

	cfg := config.Default()
	cfg.Paths = config.PathsConfig{Input: e.in, Output: e.out}
	cfg.Performance.MaxConcurrent = workers
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}

	log := logger.NewNop()
	e.runner = New(cfg, processor.New(cfg, e.fake, log), log)
	return e
}

// video creates rel under the input tree and registers it with the fake.
func (e *env) video(t *testing.T, rel string, m codectest.Media) string {
	t.Helper()
	path := filepath.Join(e.in, rel)
	writeFile(t, path, "")
	e.fake.Add(path, m)
	return path
}

func mkdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	mkdir(t, filepath.Dir(path))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func listDir(t *testing.T, dir string) map[string]string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	files := make(map[string]string, len(entries))
	for _, e := range entries {
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			t.Fatal(err)
		}
		files[e.Name()] = string(data)
	}
	return files
}

var hd = codectest.Media{Duration: 7.2, Width: 1920, Height: 1080}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{"b.mp4", "a.MOV", "sub/c.mp4", "sub/deeper/d.Mp4", "e.mkv", "notes.txt", ".f.mp4.part"} {
		writeFile(t, filepath.Join(root, rel), "")
	}
	writeFile(t, filepath.Join(root, "b.txt"), "caption")
	mkdir(t, filepath.Join(root, "a.txt"))

	sources, err := Discover(root)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	want := []string{"a.MOV", "b.mp4", "sub/c.mp4", "sub/deeper/d.Mp4"}
	if len(sources) != len(want) {
		t.Fatalf("Discover() returned %d sources, want %d", len(sources), len(want))
	}
	for i, src := range sources {
		if src.Path != filepath.Join(root, filepath.FromSlash(want[i])) {
			t.Errorf("sources[%d] = %s, want %s", i, src.Path, want[i])
		}
	}

	if sources[0].CaptionPath != "" {
		t.Errorf("a directory named a.txt was taken as a caption")
	}
	if sources[1].CaptionPath != filepath.Join(root, "b.txt") {
		t.Errorf("b.mp4 caption = %q", sources[1].CaptionPath)
	}
	if sources[2].Stem != "c" {
		t.Errorf("Stem = %q, want c", sources[2].Stem)
	}
}

func TestDiscoverMissingRoot(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "missing"))
	if !failure.Is(err, failure.KindDiscovery) {
		t.Fatalf("Discover() error = %v, want discovery failure", err)
	}
	if !Fatal(err) {
		t.Error("discovery failure should be fatal")
	}
}

func TestRunMissingInput(t *testing.T) {
	e := newEnv(t, 2)
	if err := os.RemoveAll(e.in); err != nil {
		t.Fatal(err)
	}
	if _, err := e.runner.Run(context.Background()); !Fatal(err) {
		t.Fatalf("Run() error = %v, want fatal", err)
	}
}

func TestRunEmptyInput(t *testing.T) {
	e := newEnv(t, 2)
	writeFile(t, filepath.Join(e.in, "readme.txt"), "not a video")

	sum, err := e.runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(sum.Results) != 0 || sum.Segments() != 0 {
		t.Errorf("got %d results and %d clips from an empty input", len(sum.Results), sum.Segments())
	}
	if got := listDir(t, e.out); len(got) != 0 {
		t.Errorf("outputs = %v, want none", got)
	}
}

func TestRunIsolatesFailures(t *testing.T) {
	e := newEnv(t, 3)
	e.video(t, "a_good.mp4", hd)
	writeFile(t, filepath.Join(e.in, "a_good.txt"), "a dog runs")
	e.video(t, "b_short.mp4", codectest.Media{Duration: 1.0, Width: 1920, Height: 1080})
	e.video(t, "c_broken.mov", codectest.Media{OpenErr: errors.New("invalid data found")})
	e.video(t, "d_nocap.mov", codectest.Media{Duration: 2.5, Width: 640, Height: 480})

	sum, err := e.runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	wantStatus := []processor.Status{
		processor.StatusCompleted,
		processor.StatusSkipped,
		processor.StatusFailed,
		processor.StatusCompleted,
	}
	for i, res := range sum.Results {
		if res.Status != wantStatus[i] {
			t.Errorf("%s: status = %v, want %v", filepath.Base(res.Source.Path), res.Status, wantStatus[i])
		}
	}
	if !failure.Is(sum.Results[2].Err, failure.KindDecode) {
		t.Errorf("broken source error = %v, want decode", sum.Results[2].Err)
	}
	if sum.Segments() != 3 || sum.Warnings() != 1 {
		t.Errorf("Segments() = %d, Warnings() = %d; want 3, 1", sum.Segments(), sum.Warnings())
	}

	outputs := listDir(t, e.out)
	if len(outputs) != 6 {
		t.Errorf("got %d output files, want 6: %v", len(outputs), outputs)
	}
	if outputs["a_good_segment2.txt"] != "a dog runs" {
		t.Errorf("caption = %q", outputs["a_good_segment2.txt"])
	}
	if text, ok := outputs["d_nocap_segment1.txt"]; !ok || text != "" {
		t.Errorf("stub caption = %q, present %t", text, ok)
	}

	stats := e.runner.Stats()
	want := Stats{Done: 4, Processed: 2, Skipped: 1, Failed: 1, Segments: 3, Warnings: 1}
	if stats != want {
		t.Errorf("Stats() = %+v, want %+v", stats, want)
	}
	if srcs, clips := e.fake.Leaks(); srcs != 0 || clips != 0 {
		t.Errorf("leaked %d sources and %d clips", srcs, clips)
	}
}

func TestRunSkipsStemCollision(t *testing.T) {
	e := newEnv(t, 2)
	first := e.video(t, "a/clip.mp4", hd)
	second := e.video(t, "b/Clip.MOV", hd)

	sum, err := e.runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if sum.Results[0].Source.Path != first || sum.Results[0].Status != processor.StatusCompleted {
		t.Errorf("first source: %s %v", sum.Results[0].Source.Path, sum.Results[0].Status)
	}
	dup := sum.Results[1]
	if dup.Source.Path != second || dup.Status != processor.StatusSkipped {
		t.Fatalf("second source: %s %v", dup.Source.Path, dup.Status)
	}
	if !strings.Contains(dup.Reason, first) {
		t.Errorf("Reason = %q, want it to name %s", dup.Reason, first)
	}
	for _, opened := range e.fake.Opened() {
		if opened == second {
			t.Error("colliding source was opened")
		}
	}
}

func TestRunParallelMatchesSequential(t *testing.T) {
	setup := func(e *env) {
		for i, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
			m := codectest.Media{
				Duration:   2.5 * float64(i+1),
				Width:      640 + 160*i,
				Height:     480,
				WriteDelay: 5 * time.Millisecond,
			}
			e.video(t, name+".mp4", m)
			if i%2 == 0 {
				writeFile(t, filepath.Join(e.in, name+".txt"), "caption "+name)
			}
		}
	}

	seq := newEnv(t, 1)
	setup(seq)
	par := newEnv(t, 4)
	setup(par)

	seqSum, err := seq.runner.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	parSum, err := par.runner.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if len(seqSum.Results) != len(parSum.Results) {
		t.Fatalf("result counts differ: %d vs %d", len(seqSum.Results), len(parSum.Results))
	}
	for i := range seqSum.Results {
		s, p := seqSum.Results[i], parSum.Results[i]
		if filepath.Base(s.Source.Path) != filepath.Base(p.Source.Path) || s.Status != p.Status || s.Written() != p.Written() {
			t.Errorf("result %d differs: %s %v %d vs %s %v %d", i,
				s.Source.Path, s.Status, s.Written(), p.Source.Path, p.Status, p.Written())
		}
	}

	seqOut, parOut := listDir(t, seq.out), listDir(t, par.out)
	if len(seqOut) != len(parOut) {
		t.Fatalf("output counts differ: %d vs %d", len(seqOut), len(parOut))
	}
	for name, body := range seqOut {
		other, ok := parOut[name]
		if !ok {
			t.Errorf("parallel run is missing %s", name)
			continue
		}
		if strings.HasSuffix(name, ".txt") && body != other {
			t.Errorf("%s differs: %q vs %q", name, body, other)
		}
	}

	if n := seq.fake.MaxConcurrentOpen(); n != 1 {
		t.Errorf("sequential run had %d sources open at once", n)
	}
	if n := par.fake.MaxConcurrentOpen(); n > 4 {
		t.Errorf("parallel run had %d sources open at once, limit 4", n)
	}
}

func TestRunCancelled(t *testing.T) {
	e := newEnv(t, 1)
	for _, name := range []string{"a", "b", "c", "d"} {
		e.video(t, name+".mp4", codectest.Media{Duration: 25, Width: 640, Height: 480, WriteDelay: 20 * time.Millisecond})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	sum, err := e.runner.Run(ctx)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(sum.Results) != 4 {
		t.Fatalf("got %d results, want one per source", len(sum.Results))
	}
	if sum.Count(processor.StatusCompleted) == 4 {
		t.Error("every source completed despite cancellation")
	}
	for name := range listDir(t, e.out) {
		if strings.HasSuffix(name, ".part") {
			t.Errorf("temporary file left behind: %s", name)
		}
	}
}

func TestHandle(t *testing.T) {
	e := newEnv(t, 2)
	path := e.video(t, "late.mov", hd)
	writeFile(t, filepath.Join(e.in, "late.txt"), "arrived later")
	broken := e.video(t, "broken.mp4", codectest.Media{OpenErr: errors.New("truncated")})

	if err := e.runner.Handle(context.Background(), path); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if got := listDir(t, e.out)["late_segment1.txt"]; got != "arrived later" {
		t.Errorf("caption = %q", got)
	}

	err := e.runner.Handle(context.Background(), broken)
	if !failure.Is(err, failure.KindDecode) {
		t.Errorf("Handle(broken) error = %v, want decode", err)
	}

	stats := e.runner.Stats()
	if stats.Processed != 1 || stats.Failed != 1 || stats.Segments != 2 {
		t.Errorf("Stats() = %+v", stats)
	}
}

func TestWriteReport(t *testing.T) {
	e := newEnv(t, 2)
	e.video(t, "clip.mp4", hd)
	e.video(t, "tiny.mp4", codectest.Media{Duration: 0.4, Width: 640, Height: 480})

	sum, err := e.runner.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "report.yaml")
	if err := WriteReport(path, sum); err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var rep Report
	if err := yaml.Unmarshal(data, &rep); err != nil {
		t.Fatalf("report is not valid YAML: %v", err)
	}

	want := ReportTotals{Sources: 2, Processed: 1, Skipped: 1, Clips: 2, Warnings: 2}
	if rep.Totals != want {
		t.Errorf("Totals = %+v, want %+v", rep.Totals, want)
	}
	clip := rep.Sources[0]
	if clip.Status != "processed" || clip.Size != "1920x1080" || len(clip.Segments) != 2 {
		t.Fatalf("clip entry = %+v", clip)
	}
	if clip.Segments[1].Video != "clip_segment2.mp4" || clip.Segments[1].Start != 2.5 {
		t.Errorf("segment entry = %+v", clip.Segments[1])
	}
	if rep.Sources[1].Status != "skipped" || !strings.Contains(rep.Sources[1].Reason, "too short") {
		t.Errorf("tiny entry = %+v", rep.Sources[1])
	}
}
