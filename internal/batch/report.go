package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nguyentantai21042004/clipnorm/internal/processor"
)

// Report is the YAML form of a Summary.
type Report struct {
	InputDir  string         `yaml:"input_dir"`
	OutputDir string         `yaml:"output_dir"`
	Elapsed   string         `yaml:"elapsed"`
	Totals    ReportTotals   `yaml:"totals"`
	Sources   []SourceReport `yaml:"sources"`
}

type ReportTotals struct {
	Sources   int `yaml:"sources"`
	Processed int `yaml:"processed"`
	Skipped   int `yaml:"skipped"`
	Failed    int `yaml:"failed"`
	Clips     int `yaml:"clips"`
	Warnings  int `yaml:"warnings"`
}

type SourceReport struct {
	Path     string          `yaml:"path"`
	Status   string          `yaml:"status"`
	Reason   string          `yaml:"reason,omitempty"`
	Error    string          `yaml:"error,omitempty"`
	Duration float64         `yaml:"duration,omitempty"`
	Size     string          `yaml:"size,omitempty"`
	Segments []SegmentReport `yaml:"segments,omitempty"`
}

type SegmentReport struct {
	Number  int     `yaml:"number"`
	Start   float64 `yaml:"start"`
	End     float64 `yaml:"end"`
	Video   string  `yaml:"video,omitempty"`
	Caption string  `yaml:"caption,omitempty"`
	Warning string  `yaml:"warning,omitempty"`
	Error   string  `yaml:"error,omitempty"`
}

// NewReport converts sum into its report form.
func NewReport(sum Summary) Report {
	rep := Report{
		InputDir:  sum.InputDir,
		OutputDir: sum.OutputDir,
		Elapsed:   sum.Elapsed.Round(time.Millisecond).String(),
		Totals: ReportTotals{
			Sources:   len(sum.Results),
			Processed: sum.Count(processor.StatusCompleted),
			Skipped:   sum.Count(processor.StatusSkipped),
			Failed:    sum.Count(processor.StatusFailed),
			Clips:     sum.Segments(),
			Warnings:  sum.Warnings(),
		},
	}

	for _, res := range sum.Results {
		sr := SourceReport{
			Path:     res.Source.Path,
			Status:   res.Status.String(),
			Reason:   res.Reason,
			Error:    errString(res.Err),
			Duration: res.Duration,
		}
		if res.Width > 0 || res.Height > 0 {
			sr.Size = fmt.Sprintf("%dx%d", res.Width, res.Height)
		}
		for _, seg := range res.Segments {
			sr.Segments = append(sr.Segments, SegmentReport{
				Number:  seg.Segment.Number(),
				Start:   seg.Segment.Start,
				End:     seg.Segment.End,
				Video:   baseName(seg.VideoPath),
				Caption: baseName(seg.CaptionPath),
				Warning: errString(seg.Warning),
				Error:   errString(seg.Err),
			})
		}
		rep.Sources = append(rep.Sources, sr)
	}
	return rep
}

// WriteReport writes sum as YAML to path.
func WriteReport(path string, sum Summary) error {
	data, err := yaml.Marshal(NewReport(sum))
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// baseName is filepath.Base, except that an empty path stays empty.
func baseName(path string) string {
	if path == "" {
		return ""
	}
	return filepath.Base(path)
}
