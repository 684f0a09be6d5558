package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// descriptionTerminator ends multi-line description input
const descriptionTerminator = "done"

// Prompter collects project details from a line-oriented terminal
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter creates a prompter reading from in and writing prompts to out
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// ProjectDetails asks for a name and description until the user confirms them.
// It returns io.EOF when input ends before confirmation.
func (p *Prompter) ProjectDetails() (string, string, error) {
	for {
		name, err := p.readName()
		if err != nil {
			return "", "", err
		}

		description, err := p.readDescription(name)
		if err != nil {
			return "", "", err
		}
		if description == "" {
			fmt.Fprintln(p.out, errorStyle.Render("Project description cannot be empty."))
			continue
		}

		p.printSummary(name, description)

		answer, err := p.ask("\nDoes this look correct? (y/n): ")
		if err != nil {
			return "", "", err
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return name, description, nil
		}

		fmt.Fprintln(p.out, mutedStyle.Render("\nLet's try again..."))
	}
}

func (p *Prompter) readName() (string, error) {
	for {
		line, err := p.ask("\nEnter your project name: ")
		if err != nil {
			return "", err
		}
		if name := strings.TrimSpace(line); name != "" {
			return name, nil
		}
		fmt.Fprintln(p.out, errorStyle.Render("Project name cannot be empty. Please try again."))
	}
}

func (p *Prompter) readDescription(name string) (string, error) {
	fmt.Fprintf(p.out, "\nNow describe your project '%s':\n", name)
	fmt.Fprintln(p.out, mutedStyle.Render(fmt.Sprintf("   (Type '%s' on a new line when finished)", descriptionTerminator)))

	var lines []string
	for {
		line, err := p.readLine()
		if err != nil {
			return "", err
		}
		if strings.EqualFold(line, descriptionTerminator) {
			break
		}
		lines = append(lines, line)
	}

	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}

func (p *Prompter) printSummary(name, description string) {
	rule := strings.Repeat("=", 50)
	fmt.Fprintln(p.out, "\n"+rule)
	fmt.Fprintln(p.out, titleStyle.Render("PROJECT SUMMARY"))
	fmt.Fprintln(p.out, rule)
	fmt.Fprintf(p.out, "Name: %s\n", name)
	fmt.Fprintf(p.out, "Description:\n%s\n", description)
	fmt.Fprintln(p.out, rule)
}

func (p *Prompter) ask(prompt string) (string, error) {
	fmt.Fprint(p.out, promptStyle.Render(prompt))
	return p.readLine()
}

// readLine returns one line without its terminator. A final unterminated
// line is returned as is; io.EOF is only reported when nothing was read.
func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readAll joins every line from r, used for piped descriptions
func readAll(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}
