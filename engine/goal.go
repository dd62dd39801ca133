package engine

type goalKind uint8

const (
	goalCall goalKind = iota
	goalCut
	goalTryOpen
	goalCatchOpen
	goalTryClose
	goalSpyExit
	goalCacheExit
	goalCollect
	goalCommit
)

func (k goalKind) String() string {
	return [...]string{
		goalCall:      "call",
		goalCut:       "cut",
		goalTryOpen:   "try_open",
		goalCatchOpen: "catch_open",
		goalTryClose:  "try_close",
		goalSpyExit:   "spy_exit",
		goalCacheExit: "cache_exit",
		goalCollect:   "collect",
		goalCommit:    "commit",
	}[k]
}

// goal is a node of a goal continuation. Nodes are never modified once linked.
type goal struct {
	kind    goalKind
	term    Term
	barrier int
	level   int
	next    *goal

	// try/catch
	id      int64
	class   Term // the class of a catch. nil if any class matches.
	message Term // the message variable of try/2 or the catcher of catch/3.
	iso     bool // the catch matches the ball by unification.
	seq     int

	cache   *cacheFrame
	collect *findall
}

// tryFrame is an entry of the try id stack.
type tryFrame struct {
	id    int64
	depth int
	next  *tryFrame
}

type choiceKind uint8

const (
	choiceClauses choiceKind = iota
	choiceAlt
	choiceFindall
)

// choice is a choice point.
type choice struct {
	kind  choiceKind
	goal  *goal // the goal resolved by clauses, or the alternative continuation.
	tries *tryFrame

	// clauses
	pred    Predicate
	clauses []*Clause
	index   int
	exit    *goal

	// findall
	collect *findall
}

type findall struct {
	template Term
	results  []Term
	instance Term
}

// goals builds a continuation of ts followed by next. Cuts in ts are bound to barrier.
func goals(ts []Term, barrier, level int, next *goal) *goal {
	for i := len(ts) - 1; i >= 0; i-- {
		kind := goalCall
		if Resolve(ts[i]) == Term(atomCut) {
			kind = goalCut
		}
		next = &goal{kind: kind, term: ts[i], barrier: barrier, level: level, next: next}
	}
	return next
}
