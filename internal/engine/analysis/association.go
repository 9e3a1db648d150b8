package analysis

import (
	"strings"

	"rbgraph/internal/engine/syntax"
)

// Command names recognized in namespace bodies.
const (
	CommandInclude   = "include"
	CommandBelongsTo = "belongs_to"
	CommandHasMany   = "has_many"
)

// classNameOption is matched as a substring of option keys.
const classNameOption = "class_name"

// ResolveStatement interprets one direct body statement. It returns the
// reference kind and target for include / belongs_to / has_many commands and
// false for every other shape.
func ResolveStatement(stmt syntax.Node) (ReferenceKind, string, bool) {
	cmd, ok := stmt.(*syntax.Command)
	if !ok || cmd == nil {
		return 0, "", false
	}
	switch cmd.Name {
	case CommandInclude:
		target, ok := includeTarget(cmd.Arguments)
		return Includes, target, ok
	case CommandBelongsTo:
		target, ok := associationTarget(cmd.Arguments, false)
		return BelongsTo, target, ok
	case CommandHasMany:
		target, ok := associationTarget(cmd.Arguments, true)
		return HasMany, target, ok
	default:
		return 0, "", false
	}
}

func includeTarget(args *syntax.ArgumentList) (string, bool) {
	if args == nil || len(args.Positional) != 1 {
		return "", false
	}
	ref := args.Positional[0]
	if !syntax.IsConstantRef(ref) {
		return "", false
	}
	target := Identifier(ref)
	return target, target != ""
}

func associationTarget(args *syntax.ArgumentList, toSingular bool) (string, bool) {
	if args == nil || len(args.Positional) == 0 {
		return "", false
	}
	label, ok := args.Positional[0].(*syntax.LabelLiteral)
	if !ok || label == nil {
		return "", false
	}

	target := AssociationTarget(label.Text, toSingular)
	if len(args.Positional) > 1 {
		if options, ok := args.Positional[1].(*syntax.OptionMap); ok {
			if override, ok := classNameOverride(options); ok {
				target = override
			}
		}
	}
	return target, true
}

// classNameOverride returns the first string value whose key text mentions
// class_name. Keys are compared by substring, so my_class_name matches too.
func classNameOverride(options *syntax.OptionMap) (string, bool) {
	if options == nil {
		return "", false
	}
	for _, entry := range options.Entries {
		key, ok := literalText(entry.Key)
		if !ok || !strings.Contains(key, classNameOption) {
			continue
		}
		value, ok := entry.Value.(*syntax.StringLiteral)
		if !ok || value == nil {
			continue
		}
		return value.Text, true
	}
	return "", false
}

func literalText(n syntax.Node) (string, bool) {
	switch v := n.(type) {
	case *syntax.LabelLiteral:
		if v == nil {
			return "", false
		}
		return v.Text, true
	case *syntax.StringLiteral:
		if v == nil {
			return "", false
		}
		return v.Text, true
	default:
		return "", false
	}
}
