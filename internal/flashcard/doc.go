// Package flashcard turns model output written in the flashcard line format
// into domain.Flashcard records and exports them as CSV.
//
// The line formats are:
//
//	Q: <question>               T: <term>              Q: <question>
//	A: <answer>                 D: <definition>        Options: a) ... b) ...
//	                                                   A: <answer>
//
// Parsing is best effort. Lines that do not fit the expected order are
// dropped, and a card is only emitted once its answer line is read.
package flashcard
