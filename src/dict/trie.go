package dict

// TrieNode indexes words by the phonemes of their rhymable part. Each edge is one
// stress-stripped phoneme; a node lists the words whose rhymable part ends exactly there.
type TrieNode struct {
	words    []string
	seen     map[string]struct{}
	children map[string]*TrieNode
}

func (n *TrieNode) insert(suffix []string, word string) {
	if len(suffix) == 0 {
		if n.seen == nil {
			n.seen = make(map[string]struct{})
		}
		if _, ok := n.seen[word]; ok { // two pronunciations sharing a rhyme
			return
		}
		n.seen[word] = struct{}{}
		n.words = append(n.words, word)
		return
	}

	if n.children == nil {
		n.children = make(map[string]*TrieNode)
	}
	child, ok := n.children[suffix[0]]
	if !ok {
		child = &TrieNode{}
		n.children[suffix[0]] = child
	}
	child.insert(suffix[1:], word)
}

// Find returns the node reached by following suffix, or nil.
func (n *TrieNode) Find(suffix []string) *TrieNode {
	if n == nil {
		return nil
	}
	if len(suffix) == 0 {
		return n
	}
	return n.Child(suffix[0]).Find(suffix[1:])
}

func (n *TrieNode) Child(phoneme string) *TrieNode {
	if n == nil || n.children == nil {
		return nil
	}
	return n.children[phoneme]
}

// Words lists the words stored at this node in dictionary order.
func (n *TrieNode) Words() []string {
	if n == nil {
		return nil
	}
	return n.words
}
