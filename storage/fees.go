package storage

const seqFees = "fees"

// AddFee appends a fee ledger row and indexes it under its swap request.
func (tx *Tx) AddFee(f *Fee) error {
	id, err := tx.nextSeq(seqFees)
	if err != nil {
		return err
	}
	f.ID = id

	key := FeeKey(id)
	if err := tx.putRef(RequestFeesKey(f.RequestNativeID, id), key); err != nil {
		return err
	}
	return tx.put(key, f)
}

// ListRequestFees returns all fee rows of a request in insertion order.
func (tx *Tx) ListRequestFees(requestNativeID uint64) ([]*Fee, error) {
	var fees []*Fee
	err := tx.iterate(RequestFeesPrefix(requestNativeID), func(_, value []byte) error {
		var f Fee
		if err := tx.get(value, &f); err != nil {
			return err
		}
		fees = append(fees, &f)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return fees, nil
}
