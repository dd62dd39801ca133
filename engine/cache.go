package engine

import (
	"strconv"
	"strings"
	"sync"

	"github.com/spaolacci/murmur3"
)

// answerCache memoises the first answer of a predicate per call pattern.
type answerCache struct {
	mu      sync.Mutex
	buckets map[uint64][]answer
}

type answer struct {
	key    string
	term   Term // nil if the call failed.
	failed bool
}

type cacheFrame struct {
	answers *answerCache
	key     string
}

func newAnswerCache() *answerCache {
	return &answerCache{buckets: map[uint64][]answer{}}
}

func (c *answerCache) get(key string) (answer, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, a := range c.buckets[murmur3.Sum64([]byte(key))] {
		if a.key == key {
			return a, true
		}
	}
	return answer{}, false
}

func (c *answerCache) put(a answer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h := murmur3.Sum64([]byte(a.key))
	for _, e := range c.buckets[h] {
		if e.key == a.key {
			return
		}
	}
	c.buckets[h] = append(c.buckets[h], a)
}

func (c *answerCache) clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buckets = map[uint64][]answer{}
}

func (c *answerCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int
	for _, b := range c.buckets {
		n += len(b)
	}
	return n
}

// cacheKey returns the canonical text of t. Variant terms have the same key.
func cacheKey(t Term) string {
	names := map[*Variable]string{}
	for i, v := range Variables(t) {
		names[v] = "_" + strconv.Itoa(i)
	}
	var sb strings.Builder
	_ = Write(&sb, t, WriteOptions{Quoted: true, IgnoreOps: true, variableNames: names})
	return sb.String()
}

// callCached answers a call to a cached predicate from the cache if possible.
// Otherwise, it pushes a cache marker and returns the frame for the cache-exit node.
func (m *Machine) callCached(g *goal, p Predicate) (*cacheFrame, bool) {
	key := cacheKey(g.term)
	if a, found := p.answers.get(key); found {
		if a.failed {
			return nil, false
		}
		return nil, m.env.Unify(g.term, m.env.Copy(a.term))
	}
	f := cacheFrame{answers: p.answers, key: key}
	m.env.push(entry{kind: entryCache, cache: &f})
	return &f, true
}

// exitCached stores the answer of a cached call and commits to it.
func (m *Machine) exitCached(g *goal) {
	t := (&copier{vars: map[*Variable]Term{}}).copy(m.env.Simplify(g.term))
	g.cache.answers.put(answer{key: g.cache.key, term: t})
	m.env.cut(g.barrier)
}

// failCached records that a cached call has no answer.
func (m *Machine) failCached(f *cacheFrame) {
	f.answers.put(answer{key: f.key, failed: true})
}
