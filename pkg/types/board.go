package types

// Item is the unit being ordered within a bucket (a card on the board).
// ID is caller-assigned and unique across the whole board.
type Item struct {
	ID          int64   `json:"id" yaml:"id"`
	Title       string  `json:"title" yaml:"title"`
	Description *string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Validate checks the item content. Returns ErrInvalidTitle when the title
// is empty.
func (i Item) Validate() error {
	if i.Title == "" {
		return ErrInvalidTitle
	}
	return nil
}

// Bucket is a named ordered container of items (a column on the board).
// Items are in position order: Items[p] sits at position p.
type Bucket struct {
	ID    int64  `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
	Items []Item `json:"items" yaml:"items"`
}

// Board is a fully materialized snapshot of every bucket and its items.
// Buckets are ordered by ascending id. Mutating a Board does not write
// anything back to storage.
type Board struct {
	Buckets []Bucket `json:"buckets" yaml:"buckets"`
}

// Bucket returns the bucket with the given id, or nil if the board has none.
func (b *Board) Bucket(id int64) *Bucket {
	for i := range b.Buckets {
		if b.Buckets[i].ID == id {
			return &b.Buckets[i]
		}
	}
	return nil
}

// Locate returns the slot currently holding the item with the given id.
// The second result is false if the item is not on the board.
func (b *Board) Locate(itemID int64) (Slot, bool) {
	for _, bucket := range b.Buckets {
		for pos, item := range bucket.Items {
			if item.ID == itemID {
				return Slot{BucketID: bucket.ID, Position: int64(pos)}, true
			}
		}
	}
	return Slot{}, false
}

// Slot addresses a place in a bucket: the target of an insert or move, or
// the source vacated by a move or delete. A slot names a position, not an
// item.
type Slot struct {
	BucketID int64 `json:"bucket_id" yaml:"bucket_id"`
	Position int64 `json:"position" yaml:"position"`
}

// Validate returns ErrInvalidPosition when the position is negative.
// Upper bounds depend on the bucket size and are checked by the store.
func (s Slot) Validate() error {
	if s.Position < 0 {
		return ErrInvalidPosition
	}
	return nil
}
