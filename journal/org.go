package journal

import (
	"bytes"
	"os"
	"text/template"
	"time"

	"github.com/rustyeddy/barbt/pkg/id"
)

type orgView struct {
	RunRecord
	Orders []OrderRecord
}

var runOrgFuncs = template.FuncMap{
	"short": id.Short,
	"date": func(t time.Time) string {
		if t.IsZero() {
			return "(open)"
		}
		return t.Format("2006-01-02")
	},
	"orTime": func(t time.Time) time.Time {
		if t.IsZero() {
			return time.Now()
		}
		return t
	},
}

var runOrgTemplate = template.Must(template.New("run").Funcs(runOrgFuncs).Parse(RunOrgTemplate))

// FormatRunOrg renders a run and its orders as an Org-mode entry.
func FormatRunOrg(r RunRecord, orders []OrderRecord) (string, error) {
	buf := new(bytes.Buffer)
	if err := runOrgTemplate.Execute(buf, orgView{RunRecord: r, Orders: orders}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteRunOrg writes FormatRunOrg output to path.
func WriteRunOrg(path string, r RunRecord, orders []OrderRecord) error {
	s, err := FormatRunOrg(r, orders)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(s), 0644)
}

const RunOrgTemplate = `* BACKTEST: {{.Dataset}} ({{short .RunID}})
:PROPERTIES:
:RUN_ID:      {{.RunID}}
:DATASET:     {{.Dataset}}
:START_DATE:  {{date .Start}}
:END_DATE:    {{date .End}}
:START_BAL:   {{printf "%.2f" .InitialCash}}
:END_BAL:     {{printf "%.2f" .FinalCash}}
:NET_PL:      {{printf "%.2f" .NetPL}}
:RETURN_PCT:  {{printf "%.2f" .PerformancePct}}
:TRADES:      {{.Trades}}
:CREATED:     [{{(orTime .Created).Format "2006-01-02 Mon 15:04"}}]
:END:

** Costs
| Parameter          | Value |
|--------------------+-------|
| Fixed per trade    | {{printf "%.2f" .FixedCost}} |
| Proportional       | {{printf "%.4f" .ProportionalCost}} |
| Charge close-out   | {{.ChargeCloseOut}} |
| Strict             | {{.Strict}} |

** Orders
| Date | Side | Units | Price | Cost | Cash | Position | Net Wealth |
|------+------+-------+-------+------+------+----------+------------|
{{- range .Orders }}
| {{date .Time}} | {{.Side}} | {{.Units}} | {{printf "%.2f" .Price}} | {{printf "%.2f" .Cost}} | {{printf "%.2f" .Cash}} | {{.Position}} | {{printf "%.2f" .NetWealth}} |
{{- end }}
`
