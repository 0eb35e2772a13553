// Package grammar maps commands to and from their canonical text form.
// It performs no I/O.
package grammar

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/glyphdb/gateway/core"
)

var (
	headPattern   = regexp.MustCompile(`^([a-z]+)\(([a-z]*)\)$`)
	valuesPattern = regexp.MustCompile(`^values\((.*)\)$`)
	onPattern     = regexp.MustCompile(`^on\((.*)\)$`)
)

// Build emits the canonical wire form of a command:
//
//	<operation>(<entityType>)
//	[values(<comma-joined JSON values>)]
//	on(<database>[.<namespace>[.<entity>]])
//
// The values line is omitted entirely when the command carries no payload.
func Build(cmd core.Command) (string, error) {
	if !core.IsValidOperation(cmd.Op) {
		return "", core.NewErrorSyntax("unknown operation: %s", cmd.Op)
	}
	if !core.IsValidEntityType(cmd.Type) {
		return "", core.NewErrorSyntax("unknown entity type: %s", cmd.Type)
	}
	if !core.HasValues(cmd.Op) && len(cmd.Values) > 0 {
		return "", core.NewErrorSyntax("%s does not take a values payload", cmd.Op)
	}

	var sb strings.Builder
	sb.WriteString(string(cmd.Op))
	sb.WriteString("(")
	sb.WriteString(string(cmd.Type))
	sb.WriteString(")\n")

	if len(cmd.Values) > 0 {
		serialized := make([]string, len(cmd.Values))
		for i, value := range cmd.Values {
			encoded, err := json.Marshal(value)
			if err != nil {
				return "", core.NewErrorSyntax("unserializable value at index %d: %s", i, err.Error())
			}
			serialized[i] = string(encoded)
		}
		sb.WriteString("values(")
		sb.WriteString(strings.Join(serialized, ", "))
		sb.WriteString(")\n")
	}

	sb.WriteString("on(")
	sb.WriteString(cmd.Target.String())
	sb.WriteString(")")

	return sb.String(), nil
}

// Parse reads command text back into a command. Build(Parse(x)) is a
// normalizing round trip; Parse(Build(c)) reproduces c exactly.
func Parse(input string) (core.Command, error) {
	var cmd core.Command

	lines := []string{}
	for _, line := range strings.Split(input, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			lines = append(lines, trimmed)
		}
	}

	if len(lines) == 0 {
		return cmd, core.NewErrorSyntax("empty command")
	}

	head := headPattern.FindStringSubmatch(lines[0])
	if head == nil {
		return cmd, core.NewErrorSyntax("malformed command head: %s", lines[0])
	}
	op := core.Operation(head[1])
	typ := core.EntityType(head[2])
	if !core.IsValidOperation(op) {
		return cmd, core.NewErrorSyntax("unknown operation: %s", head[1])
	}
	if !core.IsValidEntityType(typ) {
		return cmd, core.NewErrorSyntax("unknown entity type: %s", head[2])
	}
	cmd.Op = op
	cmd.Type = typ

	seenOn := false
	for _, line := range lines[1:] {
		if match := valuesPattern.FindStringSubmatch(line); match != nil {
			if !core.HasValues(op) {
				return core.Command{}, core.NewErrorSyntax("%s does not take a values payload", op)
			}
			if cmd.Values != nil {
				return core.Command{}, core.NewErrorSyntax("duplicate values line")
			}
			if seenOn {
				return core.Command{}, core.NewErrorSyntax("values must precede on")
			}
			values, err := parseValues(match[1])
			if err != nil {
				return core.Command{}, err
			}
			cmd.Values = values
			continue
		}
		if match := onPattern.FindStringSubmatch(line); match != nil {
			if seenOn {
				return core.Command{}, core.NewErrorSyntax("duplicate on line")
			}
			seenOn = true
			cmd.Target = core.ParsePath(match[1])
			continue
		}
		return core.Command{}, core.NewErrorSyntax("unexpected line: %s", line)
	}

	if !seenOn {
		return core.Command{}, core.NewErrorSyntax("missing on(...) line")
	}

	return cmd, nil
}

func parseValues(inner string) ([]any, error) {
	if strings.TrimSpace(inner) == "" {
		return nil, core.NewErrorSyntax("empty values payload")
	}
	var values []any
	if err := json.Unmarshal([]byte("["+inner+"]"), &values); err != nil {
		return nil, core.NewErrorSyntax("malformed values payload: %s", err.Error())
	}
	return values, nil
}
