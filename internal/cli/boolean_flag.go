package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	switchFlagTypeName       = "bool"
	switchFlagImpliedLiteral = "true"
	switchFlagAcceptedValues = "true, false, yes, no, on, off, 1, 0"
	errorSwitchValueFormat   = "invalid value %q for --%s; accepted values: %s"
)

var switchFlagLiterals = map[string]bool{
	"true":  true,
	"t":     true,
	"1":     true,
	"yes":   true,
	"y":     true,
	"on":    true,
	"false": false,
	"f":     false,
	"0":     false,
	"no":    false,
	"n":     false,
	"off":   false,
}

func parseSwitchLiteral(input string) (bool, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		normalized = switchFlagImpliedLiteral
	}
	parsed, known := switchFlagLiterals[normalized]
	return parsed, known
}

// switchFlag is a boolean flag accepting yes/no style literals in addition to true/false.
type switchFlag struct {
	target *bool
	name   string
}

func (flag *switchFlag) Set(input string) error {
	parsed, known := parseSwitchLiteral(input)
	if !known {
		return fmt.Errorf(errorSwitchValueFormat, input, flag.name, switchFlagAcceptedValues)
	}
	*flag.target = parsed
	return nil
}

func (flag *switchFlag) String() string {
	if flag.target == nil {
		return strconv.FormatBool(false)
	}
	return strconv.FormatBool(*flag.target)
}

func (flag *switchFlag) Type() string {
	return switchFlagTypeName
}

// registerSwitchFlag adds a switch named name to flagSet. A bare --name means true.
func registerSwitchFlag(flagSet *pflag.FlagSet, target *bool, name string, defaultValue bool, usage string) {
	*target = defaultValue
	flagSet.Var(&switchFlag{target: target, name: name}, name, usage)
	registered := flagSet.Lookup(name)
	registered.DefValue = strconv.FormatBool(defaultValue)
	registered.NoOptDefVal = switchFlagImpliedLiteral
}

// NormalizeArguments rewrites "--switch value" pairs into "--switch=value" for every
// switch registered under command, so that "--copy no" is not read as a positional root.
func NormalizeArguments(command *cobra.Command, arguments []string) []string {
	switchNames := map[string]struct{}{}
	collectSwitchNames(command, switchNames)
	if len(switchNames) == 0 {
		return arguments
	}
	normalized := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		currentArgument := arguments[index]
		if currentArgument == "--" {
			normalized = append(normalized, arguments[index:]...)
			break
		}
		flagName, isLongFlag := strings.CutPrefix(currentArgument, "--")
		if isLongFlag && !strings.Contains(flagName, "=") && index+1 < len(arguments) {
			if _, isSwitch := switchNames[flagName]; isSwitch {
				nextArgument := arguments[index+1]
				if _, known := parseSwitchLiteral(nextArgument); known && nextArgument != "" && !strings.HasPrefix(nextArgument, "-") {
					normalized = append(normalized, currentArgument+"="+nextArgument)
					index++
					continue
				}
			}
		}
		normalized = append(normalized, currentArgument)
	}
	return normalized
}

func collectSwitchNames(command *cobra.Command, target map[string]struct{}) {
	if command == nil {
		return
	}
	record := func(flag *pflag.Flag) {
		if flag.Value.Type() == switchFlagTypeName {
			target[flag.Name] = struct{}{}
		}
	}
	command.PersistentFlags().VisitAll(record)
	command.Flags().VisitAll(record)
	for _, child := range command.Commands() {
		collectSwitchNames(child, target)
	}
}
