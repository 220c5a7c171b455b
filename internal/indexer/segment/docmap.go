package segment

// DocumentMap resolves document ids to file names.
type DocumentMap struct {
	store Store
}

func NewDocumentMap(store Store) *DocumentMap {
	return &DocumentMap{store: store}
}

// Name returns the map record for docID.
func (m *DocumentMap) Name(docID uint64) (MapRecord, error) {
	fields, err := m.store.Record(docID)
	if err != nil {
		return MapRecord{}, err
	}
	if err := requireFields(m.store, docID, fields, 1); err != nil {
		return MapRecord{}, err
	}
	return MapRecord{FileName: fields[0], Extra: fields[1:]}, nil
}
