package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

var csvHeaders = []string{"No", "Nama", "Email", "E-Wallet", "Status", "Tanggal"}

// exportCSV streams the submission list as a CSV attachment. Every cell is
// double-quoted, matching the file the admin page used to build client-side.
func (h *handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	subs, err := h.app.Submissions.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	var b strings.Builder
	writeCSVRow(&b, csvHeaders)
	for i, s := range subs {
		status := "Belum Bayar"
		if s.Paid {
			status = "Lunas"
		}
		writeCSVRow(&b, []string{
			fmt.Sprintf("%d", i+1),
			s.Name,
			s.Email,
			s.Wallet,
			status,
			s.CreatedAt.Format("2/1/2006, 15.04.05"),
		})
	}

	filename := fmt.Sprintf("gmail_submissions_%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(b.String()))
}

func writeCSVRow(b *strings.Builder, cells []string) {
	for i, cell := range cells {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(cell, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteByte('\n')
}
