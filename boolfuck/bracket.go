package boolfuck

import (
	"fmt"
)

var ErrUnbalancedBrackets error = fmt.Errorf("Unbalanced brackets")

var ErrNotABracket error = fmt.Errorf("Not a bracket")

// FindMatch scans program from start for the partner of bracket and returns
// the jump target. For OP_WHILE the target is one past the matching
// OP_WHILE_END; for OP_WHILE_END it is the matching OP_WHILE itself.
func FindMatch(program []rune, start int, bracket rune) (int, error) {
	var partner rune
	var direction, adjust int
	switch OP(bracket) {
	case OP_WHILE:
		partner, direction, adjust = rune(OP_WHILE_END), 1, 1
	case OP_WHILE_END:
		partner, direction, adjust = rune(OP_WHILE), -1, 0
	default:
		return 0, fmt.Errorf("Character [%q] is neither %q nor %q. %w", bracket, OP_WHILE, OP_WHILE_END, ErrNotABracket)
	}

	if start < 0 || start >= len(program) {
		return 0, fmt.Errorf("Start index [%d] out of bounds (Program length: [%d])", start, len(program))
	}

	// same-type brackets seen that still need a partner before ours
	nested := 0
	index := start
	for {
		if direction < 0 && index == 0 {
			return 0, fmt.Errorf("Reached start of program looking for %q from index [%d]. %w", partner, start, ErrUnbalancedBrackets)
		}
		if direction > 0 && index == len(program)-1 {
			return 0, fmt.Errorf("Reached end of program looking for %q from index [%d]. %w", partner, start, ErrUnbalancedBrackets)
		}
		index = index + direction

		switch program[index] {
		case bracket:
			nested++
		case partner:
			if nested == 0 {
				return index + adjust, nil
			}
			nested--
		}
	}
}
