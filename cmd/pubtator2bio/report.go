package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/gomlx/go-pubtator/issues"
	"github.com/gomlx/go-pubtator/ner"
	"github.com/gomlx/go-pubtator/pubtator"
	"github.com/gomlx/go-pubtator/records"
)

// report prints the verbose diagnostics.
type report struct {
	w                  io.Writer
	header, label, tag lipgloss.Style
	warning            lipgloss.Style
}

func newReport(w io.Writer) *report {
	return &report{
		w:       w,
		header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		label:   lipgloss.NewStyle().Bold(true),
		tag:     lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	}
}

// Document prints one processed document. record is nil in inference mode.
func (r *report) Document(doc *pubtator.Document, record *records.TrainingRecord) {
	fmt.Fprintln(r.w, r.header.Render("PMID "+doc.ID))
	fmt.Fprintln(r.w, r.label.Render("Title:"), strings.TrimSpace(doc.Title))
	fmt.Fprintln(r.w, r.label.Render("Abstract:"), strings.TrimSpace(doc.Abstract))
	labels := make([]string, len(doc.Annotations))
	for i, a := range doc.Annotations {
		labels[i] = fmt.Sprintf("%q [%d, %d) %s", a.Mention, a.Start, a.End, a.Type)
	}
	fmt.Fprintln(r.w, r.label.Render("Labels:"), strings.Join(labels, "; "))
	if record == nil {
		fmt.Fprintln(r.w)
		return
	}

	parts := make([]string, len(record.Sentences))
	for i, text := range record.Sentences {
		if record.BIONERTags[i] == ner.O {
			parts[i] = text
			continue
		}
		parts[i] = r.tag.Render(text + "/" + record.BIONERTags[i].String())
	}
	fmt.Fprintln(r.w, r.label.Render("Tokens:"), strings.Join(parts, " "))

	// Annotations matching no token are the ones to look at when a mention is not tagged.
	aligned := make(map[[2]int]bool, len(record.Sentences))
	for _, sentence := range record.Tokens {
		for _, token := range sentence {
			aligned[[2]int{token.Start, token.End}] = true
		}
	}
	segments := make([]string, len(record.Annotations))
	for i, a := range record.Annotations {
		segments[i] = fmt.Sprintf("%q [%d, %d) %s", a.Text, a.Start, a.End, a.Type)
		if !aligned[[2]int{a.Start, a.End}] {
			segments[i] = r.warning.Render(segments[i] + " (no matching token)")
		}
	}
	fmt.Fprintln(r.w, r.label.Render("Annotations:"), strings.Join(segments, "; "))
	fmt.Fprintln(r.w, r.label.Render("IO labels:"), fmt.Sprint(record.NERTags))
	fmt.Fprintln(r.w, r.label.Render("BIO labels:"), fmt.Sprint(record.BIONERTags))
	fmt.Fprintln(r.w)
}

// Summary prints the number of documents and of issues per kind.
func (r *report) Summary(documents int, collector *issues.Collector) {
	fmt.Fprintf(r.w, "Total number of documents processed: %d\n", documents)
	for _, kind := range collector.SortedKinds() {
		fmt.Fprintln(r.w, r.warning.Render(fmt.Sprintf("%s: %d", kind, collector.Count(kind))))
	}
}
