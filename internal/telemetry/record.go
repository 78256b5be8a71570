// internal/telemetry/record.go
package telemetry

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CSVHeader is the column layout of the persistent log.
const CSVHeader = "HV_V,LV_V,I1_A,I2_A,Temp1_C,Temp2_C,I1_CNT,DUT_Status"

// Sample is the outcome of one register read.
// OK=false means the read failed and Raw carries nothing.
type Sample struct {
	Raw uint16
	OK  bool
}

// Valid wraps a successfully read register value.
func Valid(raw uint16) Sample { return Sample{Raw: raw, OK: true} }

// Failed is the zero-value outcome of a failed read.
func Failed() Sample { return Sample{} }

// Record is one polling cycle snapshot.
// Built once per cycle and never modified afterwards.
type Record struct {
	At time.Time

	Temp1   Sample
	Temp2   Sample
	HV      Sample
	LV      Sample
	I2      Sample
	I1      Sample
	I1Count Sample
	Status  Sample
}

func (r Record) HighVoltage() (float64, bool) { return scaled(r.HV) }
func (r Record) LowVoltage() (float64, bool)  { return scaled(r.LV) }
func (r Record) Current1() (float64, bool)    { return scaled(r.I1) }
func (r Record) Current2() (float64, bool)    { return scaled(r.I2) }
func (r Record) Temperature1() (float64, bool) {
	return temperature(r.Temp1)
}
func (r Record) Temperature2() (float64, bool) {
	return temperature(r.Temp2)
}

// Samples returns every sample in read order.
func (r Record) Samples() []Sample {
	return []Sample{r.Temp1, r.Temp2, r.HV, r.LV, r.I2, r.I1, r.I1Count, r.Status}
}

// Failures counts the samples whose read failed.
func (r Record) Failures() int {
	n := 0
	for _, s := range r.Samples() {
		if !s.OK {
			n++
		}
	}
	return n
}

// CSVFields renders the record in CSVHeader column order.
// A failed sample is an empty field.
func (r Record) CSVFields() []string {
	return []string{
		floatField(r.HighVoltage()),
		floatField(r.LowVoltage()),
		floatField(r.Current1()),
		floatField(r.Current2()),
		floatField(r.Temperature1()),
		floatField(r.Temperature2()),
		countField(r.I1Count),
		hexField(r.Status),
	}
}

// String is the human readable line printed every cycle.
func (r Record) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "HV_V=%s", lineFloat(r.HighVoltage()))
	fmt.Fprintf(&b, ", LV_V=%s", lineFloat(r.LowVoltage()))
	fmt.Fprintf(&b, ", I1_A=%s", lineFloat(r.Current1()))
	fmt.Fprintf(&b, ", I2_A=%s", lineFloat(r.Current2()))
	fmt.Fprintf(&b, ", Temp1_C=%s", lineFloat(r.Temperature1()))
	fmt.Fprintf(&b, ", Temp2_C=%s", lineFloat(r.Temperature2()))
	fmt.Fprintf(&b, ", I1_CNT=%s", orNA(countField(r.I1Count)))
	fmt.Fprintf(&b, ", DUT_Status=%s", orNA(hexField(r.Status)))

	return b.String()
}

// ---- helpers ----

func scaled(s Sample) (float64, bool) {
	if !s.OK {
		return 0, false
	}
	return Scaled(s.Raw), true
}

func temperature(s Sample) (float64, bool) {
	if !s.OK {
		return 0, false
	}
	return Temperature(s.Raw), true
}

func floatField(v float64, ok bool) string {
	if !ok {
		return ""
	}
	return fmt.Sprintf("%.2f", v)
}

func lineFloat(v float64, ok bool) string {
	if !ok {
		return "n/a"
	}
	return fmt.Sprintf("%2.2f", v)
}

func countField(s Sample) string {
	if !s.OK {
		return ""
	}
	return strconv.Itoa(int(s.Raw))
}

func hexField(s Sample) string {
	if !s.OK {
		return ""
	}
	return fmt.Sprintf("0x%x", s.Raw)
}

func orNA(s string) string {
	if s == "" {
		return "n/a"
	}
	return s
}
