package report

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/mwiater/kernbench/internal/tensor"
)

// Value is a kernel output in report form. Scalars serialize as a bare
// number and tensors as {"shape": [...], "data": [...]}.
type Value struct {
	Shape []int     `json:"shape"`
	Data  []float64 `json:"data"`
}

// NewValue converts t; nil in, nil out.
func NewValue(t *tensor.Tensor) *Value {
	if t == nil {
		return nil
	}
	return &Value{Shape: t.Shape(), Data: t.Data()}
}

// IsScalar reports whether v is a single number with no shape.
func (v *Value) IsScalar() bool { return len(v.Shape) == 0 && len(v.Data) == 1 }

// Tensor rebuilds a float tensor from v.
func (v *Value) Tensor() (*tensor.Tensor, error) {
	if v.IsScalar() {
		return tensor.Scalar(tensor.Float, v.Data[0]), nil
	}
	return tensor.FromSlice(tensor.Float, v.Data, v.Shape...)
}

// String renders v compactly for text output.
func (v *Value) String() string {
	if v == nil {
		return "-"
	}
	if v.IsScalar() {
		return fmt.Sprintf("%g", v.Data[0])
	}
	return fmt.Sprintf("%v%v", v.Shape, v.Data)
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.IsScalar() {
		return json.Marshal(v.Data[0])
	}
	type plain Value
	return json.Marshal(plain(v))
}

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] != '{' {
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*v = Value{Shape: []int{}, Data: []float64{n}}
		return nil
	}
	type plain Value
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*v = Value(p)
	return nil
}
