package kernbench

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/mwiater/kernbench/internal/external"
	"github.com/mwiater/kernbench/internal/report"
)

func runExternal(ctx context.Context, out io.Writer, runner external.Runner, req external.Request, jsonMode bool) error {
	res, err := runner.Run(ctx, req)
	if err != nil {
		return err
	}
	p := res.Payload
	if jsonMode {
		data, err := json.MarshalIndent(p, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "%s\n", data)
		return err
	}

	backend := p.Backend
	if backend == "" {
		backend = "-"
	}
	fmt.Fprintf(out, "%s  backend=%s  runs=%d  mean=%s", p.Kernel, backend, p.Runs, report.FormatSeconds(p.MeanMS/1e3))
	if p.MedianMS > 0 {
		fmt.Fprintf(out, "  p50=%s", report.FormatSeconds(p.MedianMS/1e3))
	}
	if p.GFLOPS > 0 {
		fmt.Fprintf(out, "  gflops=%.2f", p.GFLOPS)
	}
	if p.BandwidthGBPS > 0 {
		fmt.Fprintf(out, "  bandwidth=%.2fGB/s", p.BandwidthGBPS)
	}
	if p.Result != nil {
		fmt.Fprintf(out, "  result=%v", *p.Result)
	}
	fmt.Fprintf(out, "  (wall %s)\n", res.Elapsed.Round(time.Microsecond))
	return nil
}
