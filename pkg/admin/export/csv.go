package export

import (
	"encoding/csv"
	"io"
	"time"

	"regdesk-be/internal/entity"
)

const (
	dateLayout = "02/01/2006"
	missing    = "N/A"
)

var Header = []string{"Name", "Mobile Number", "Panchayath", "Category", "Registered Date", "Expiry Date"}

// Filename names the download after the export day in loc
func Filename(now time.Time, loc *time.Location) string {
	return "registrations-export-" + now.In(loc).Format("2006-01-02") + ".csv"
}

// WriteCSV renders registrations in the given order. Dates are shown in loc.
// Registrations must carry their joined category and panchayath.
func WriteCSV(w io.Writer, regs []*entity.Registration, loc *time.Location) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}

	for _, reg := range regs {
		panchayath := missing
		if reg.Panchayath != nil && reg.Panchayath.Name != "" {
			panchayath = reg.Panchayath.Name
		}
		category := missing
		if reg.Category != nil && reg.Category.NameEnglish != "" {
			category = reg.Category.NameEnglish
		}
		expiry := missing
		if reg.ExpiryDate != nil {
			expiry = reg.ExpiryDate.In(loc).Format(dateLayout)
		}

		if err := cw.Write([]string{
			reg.FullName,
			reg.MobileNumber,
			panchayath,
			category,
			reg.CreatedAt.In(loc).Format(dateLayout),
			expiry,
		}); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
