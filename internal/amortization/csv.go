package amortization

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"loan-overpay/internal/calendar"
)

var scheduleHeader = []string{
	"index",
	"date",
	"principal_start",
	"installment",
	"interest",
	"principal_part",
	"overpayment",
	"principal_end",
	"is_overpaid",
}

// WriteScheduleCSVFile writes the schedule to path, creating or truncating it.
func WriteScheduleCSVFile(path string, schedule []ScheduleEntry) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := WriteScheduleCSV(f, schedule); err != nil {
		return err
	}
	return f.Close()
}

func WriteScheduleCSV(out io.Writer, schedule []ScheduleEntry) error {
	w := csv.NewWriter(out)

	if err := w.Write(scheduleHeader); err != nil {
		return err
	}

	for _, e := range schedule {
		row := []string{
			strconv.Itoa(e.Index),
			calendar.FormatDate(e.Date),
			fmtMoney(e.PrincipalStart),
			fmtMoney(e.Installment),
			fmtMoney(e.Interest),
			fmtMoney(e.PrincipalPart),
			fmtMoney(e.Overpayment),
			fmtMoney(e.PrincipalEnd),
			strconv.FormatBool(e.IsOverpaid),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func fmtMoney(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
