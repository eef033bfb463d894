package external

import (
	_ "embed"
	"encoding/json"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/mwiater/kernbench/internal/errs"
	"github.com/mwiater/kernbench/internal/util"
)

//go:embed payload.schema.json
var payloadSchema []byte

// Payload is the summary line an external benchmark prints last.
type Payload struct {
	Backend       string   `json:"backend,omitempty"`
	Kernel        string   `json:"kernel"`
	Size          int      `json:"size,omitempty"`
	Runs          int      `json:"runs"`
	Warmup        int      `json:"warmup,omitempty"`
	BlockSize     int      `json:"block_size,omitempty"`
	MeanMS        float64  `json:"mean_ms"`
	MedianMS      float64  `json:"median_ms,omitempty"`
	MinMS         float64  `json:"min_ms,omitempty"`
	MaxMS         float64  `json:"max_ms,omitempty"`
	GFLOPS        float64  `json:"gflops,omitempty"`
	BandwidthGBPS float64  `json:"bandwidth_gbps,omitempty"`
	Result        *float64 `json:"result,omitempty"`
}

// ParseOutput splits stdout into diagnostics and the trailing payload. The
// last non-empty line must be a JSON object matching the payload schema.
func ParseOutput(stdout string) (Payload, []string, error) {
	lines := strings.Split(strings.ReplaceAll(stdout, "\r\n", "\n"), "\n")
	last := -1
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) != "" {
			last = i
			break
		}
	}
	if last < 0 {
		return Payload{}, nil, errs.KernelExecution(nil, "external benchmark produced no output")
	}
	var diagnostics []string
	for _, line := range lines[:last] {
		if strings.TrimSpace(line) != "" {
			diagnostics = append(diagnostics, line)
		}
	}

	raw := []byte(strings.TrimSpace(lines[last]))
	if err := validatePayload(raw); err != nil {
		return Payload{}, diagnostics, err
	}
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Payload{}, diagnostics, errs.KernelExecution(err, "decode payload")
	}
	return p, diagnostics, nil
}

func validatePayload(raw []byte) error {
	if !json.Valid(raw) {
		return errs.KernelExecution(nil, "last output line is not JSON: %q", util.Excerpt(string(raw), 120))
	}
	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(payloadSchema), gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return errs.KernelExecution(err, "payload schema validation")
	}
	if result.Valid() {
		return nil
	}
	var problems []string
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}
	return errs.KernelExecution(nil, "payload failed validation: %s", strings.Join(problems, ", "))
}
