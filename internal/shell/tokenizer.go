package shell

import "strings"

// MaxArgs is the number of arguments a command line may carry after the
// command name. Extra words are ignored.
const MaxArgs = 2

// Command is one parsed input line. Missing arguments are empty strings.
type Command struct {
	Name string
	Arg1 string
	Arg2 string
}

// Parse splits line on whitespace. ok is false for a blank line.
func Parse(line string) (cmd Command, ok bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, false
	}
	cmd.Name = fields[0]
	if len(fields) > 1 {
		cmd.Arg1 = fields[1]
	}
	if len(fields) > 2 {
		cmd.Arg2 = fields[2]
	}
	return cmd, true
}
