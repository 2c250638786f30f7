package runner

import (
	"fmt"
	"strings"
)

// FlagAliases defines a group of flag names that are aliases for the same option
type FlagAliases struct {
	Names    []string // e.g., ["-w", "--workflow"]
	TakesArg bool     // true if the flag takes an argument
}

// CheckDuplicateFlags scans args for duplicate flags with conflicting values
// Returns an error describing the conflict, or nil if no conflicts found
func CheckDuplicateFlags(args []string, flagGroups []FlagAliases) error {
	for _, group := range flagGroups {
		var values []string
		var flagsUsed []string

		for i := 0; i < len(args); i++ {
			arg := args[i]

			for _, flagName := range group.Names {
				if group.TakesArg {
					// Check for "-w value" or "--workflow value" format
					if arg == flagName && i+1 < len(args) {
						values = append(values, args[i+1])
						flagsUsed = append(flagsUsed, flagName)
						i++ // skip the value
						break
					}
					// Check for "-w=value" or "--workflow=value" format
					if strings.HasPrefix(arg, flagName+"=") {
						values = append(values, arg[len(flagName)+1:])
						flagsUsed = append(flagsUsed, flagName)
						break
					}
				} else {
					// Boolean flag
					if arg == flagName {
						values = append(values, "true")
						flagsUsed = append(flagsUsed, flagName)
						break
					}
				}
			}
		}

		// Check for conflicts
		if len(values) > 1 {
			// Check if all values are the same (not a conflict)
			allSame := true
			for _, v := range values[1:] {
				if v != values[0] {
					allSame = false
					break
				}
			}
			if !allSame {
				return fmt.Errorf("conflicting flags: %s specified multiple times with different values (%s)",
					strings.Join(flagsUsed, ", "), strings.Join(values, " vs "))
			}
		}
	}
	return nil
}

// CommonFlagGroups returns the flag groups the CLI understands
func CommonFlagGroups() []FlagAliases {
	return []FlagAliases{
		{Names: []string{"-w", "--workflow"}, TakesArg: true},
		{Names: []string{"-f", "--file"}, TakesArg: true},
		{Names: []string{"-o", "--output"}, TakesArg: true},
		{Names: []string{"-x", "--constraints"}, TakesArg: true},
		{Names: []string{"-l", "--lock"}, TakesArg: false},
		{Names: []string{"-s", "--save"}, TakesArg: false},
		{Names: []string{"-J", "--stats-json"}, TakesArg: false},
		{Names: []string{"--prune"}, TakesArg: false},
		{Names: []string{"--keep"}, TakesArg: true},
		{Names: []string{"--skip-enrich"}, TakesArg: false},
		{Names: []string{"--skip-trl"}, TakesArg: false},
		{Names: []string{"-v", "--verbose"}, TakesArg: false},
	}
}

// reorderArgsForFlagParsing moves all flags to the front so Go's flag package
// can parse them correctly (it stops at the first non-flag argument)
func reorderArgsForFlagParsing(args []string, flagGroups []FlagAliases) []string {
	// Build a set of known flags for quick lookup
	knownFlags := make(map[string]bool)
	flagTakesArg := make(map[string]bool)
	for _, group := range flagGroups {
		for _, name := range group.Names {
			knownFlags[name] = true
			flagTakesArg[name] = group.TakesArg
		}
	}
	// Add common flags that might not be in flagGroups
	commonFlags := []string{"-h", "--help", "--workflows"}
	for _, f := range commonFlags {
		knownFlags[f] = true
	}

	var flagArgs []string
	var positionalArgs []string

	i := 0
	for i < len(args) {
		arg := args[i]

		// Check if it's a flag
		if strings.HasPrefix(arg, "-") {
			// Check for --flag=value format
			if eqIdx := strings.Index(arg, "="); eqIdx > 0 {
				flagName := arg[:eqIdx]
				if knownFlags[flagName] {
					flagArgs = append(flagArgs, arg)
					i++
					continue
				}
			}

			// Check if it's a known flag
			if knownFlags[arg] {
				flagArgs = append(flagArgs, arg)
				// If it takes an argument, include the next arg too
				if flagTakesArg[arg] && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
					i++
					flagArgs = append(flagArgs, args[i])
				}
				i++
				continue
			}

			// Unknown flag - still treat as flag so parsing reports it
			flagArgs = append(flagArgs, arg)
			i++
			continue
		}

		// It's a positional argument
		positionalArgs = append(positionalArgs, arg)
		i++
	}

	// Return flags first, then positional args
	return append(flagArgs, positionalArgs...)
}
