package shell

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/bruteforce-framework/bruteforce/internal/config"
	"github.com/bruteforce-framework/bruteforce/internal/core/domain"
)

const Version = "2.0"

const bannerArt = `
 ____  ____  _   _ _____ _____
| __ )|  _ \| | | |_   _| ____|
|  _ \| |_) | | | | | | |  _|
| |_) |  _ <| |_| | | | | |___
|____/|_| \_\\___/  |_| |_____|
`

// Printer renders everything the user sees outside the progress line.
type Printer struct {
	out    io.Writer
	good   *color.Color
	bad    *color.Color
	warn   *color.Color
	info   *color.Color
	strong *color.Color
}

func NewPrinter(out io.Writer, colored bool) *Printer {
	p := &Printer{
		out:    out,
		good:   color.New(color.FgGreen),
		bad:    color.New(color.FgRed),
		warn:   color.New(color.FgYellow),
		info:   color.New(color.FgBlue),
		strong: color.New(color.FgWhite, color.Bold),
	}
	for _, c := range []*color.Color{p.good, p.bad, p.warn, p.info, p.strong} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p *Printer) Banner() {
	p.info.Fprint(p.out, bannerArt+"\n")
	p.warn.Fprintf(p.out, "BruteForce Framework v%s\n", Version)
	p.warn.Fprintln(p.out, strings.Repeat("=", 24))
	fmt.Fprintln(p.out)
}

func (p *Printer) Prompt() {
	p.info.Fprint(p.out, "bf > ")
}

func (p *Printer) Println(a ...interface{}) {
	fmt.Fprintln(p.out, a...)
}

func (p *Printer) Infof(format string, a ...interface{}) {
	p.warn.Fprintf(p.out, format+"\n", a...)
}

func (p *Printer) Successf(format string, a ...interface{}) {
	p.good.Fprintf(p.out, format+"\n", a...)
}

// Error prints one "[!]" line per joined error.
func (p *Printer) Error(err error) {
	for _, line := range strings.Split(err.Error(), "\n") {
		p.bad.Fprintf(p.out, "[!] %s\n", line)
	}
}

func (p *Printer) Errorf(format string, a ...interface{}) {
	p.Error(fmt.Errorf(format, a...))
}

func (p *Printer) Options(rows []config.Option) {
	fmt.Fprintln(p.out, "\nCurrent configuration:")
	for _, row := range rows {
		fmt.Fprintf(p.out, "  %-11s %s\n", row.Name+":", row.Value)
	}
	fmt.Fprintln(p.out)
}

// Result prints the outcome of a finished search.
func (p *Printer) Result(res *domain.SearchResult) {
	fmt.Fprintln(p.out)
	for _, w := range res.Warnings {
		p.warn.Fprintf(p.out, "[!] %s\n", w)
	}

	switch res.Status {
	case domain.StatusSucceeded:
		p.good.Fprintf(p.out, "[+] Password found: %s\n", res.Password)
	case domain.StatusCancelled:
		p.warn.Fprintln(p.out, "[!] Attack cancelled")
	default:
		p.bad.Fprintln(p.out, "[-] Password not found")
	}

	fmt.Fprintf(p.out, "Attempts: %d\n", res.Attempts)
	fmt.Fprintf(p.out, "Time: %.2f seconds\n", res.Elapsed.Seconds())
	if m := res.Metrics; !m.LastUpdated.IsZero() {
		fmt.Fprintf(p.out, "%s %.1f%% CPU, %d MB heap, %d attempts/s\n",
			p.strong.Sprint("Resources:"), m.CPUUsage, m.MemoryUsageMB, m.AttemptsPerSec)
	}
}
