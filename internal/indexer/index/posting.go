package index

// Posting is one postings-store record: a document and the term's weight in
// it.
type Posting struct {
	DocID  uint64
	Weight uint64
}

type PostingList []Posting

// TermEntry is a term together with its full postings run.
type TermEntry struct {
	Term     string
	Postings PostingList
}

// Candidate is a document with its summed weight over all query terms.
type Candidate struct {
	DocID  uint64
	Weight uint64
}
