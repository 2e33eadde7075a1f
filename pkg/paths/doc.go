/*
Package paths implements the regex-keyed decision tree that maps user input
to scripted answers.

A tree is a nested, insertion-ordered mapping from pattern keys to nodes.
A node is either an Answer (possibly incomplete, meaning the author has not
written it yet) or a Branch holding further patterns.

# Matching

Evaluation is a greedy single-path descent: at each level the first pattern,
in insertion order, that finds a match anywhere in the input is taken. A
branch is descended with the same input; an answer ends the walk. There is
no backtracking into siblings and no longest-match preference.

	t := paths.New()
	hello := "hi!"
	_ = t.Insert("hello", nil, nil)
	_ = t.Insert("world", []string{"hello"}, &hello)

	t.Evaluate("hello world") // "hi!", true
	t.Evaluate("hello there") // "", false

# Keys

Patterns are ECMAScript regular expressions written either as plain source
("^bye$") or as a literal with flags ("/bye/i"). The canonical string form
is the key: two expressions with the same form are the same entry.
*/
package paths
