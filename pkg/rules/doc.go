// Package rules defines discovered usage rules and ranks them.
//
// A [Rule] is one unit of guidance about how to use a dependency, destined
// for an AI assistant's configuration. Rules are produced by exactly one
// discovery strategy and never mutated afterwards; [Prioritize] orders a set
// of rules by confidence and category and drops duplicates.
//
// Confidence comes from [Weights], one value per [Source]:
//
//	w := rules.DefaultWeights()          // direct 0.9, repository 0.7, inference 0.5
//	r := rules.New("react llms.txt", rules.SourceDirect, rules.CategoryDocumentation, body, w)
//	ranked := rules.Prioritize(all)
package rules
