// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package database

import (
	"fmt"
)

// CommitMarkerError reports that the metadata store did not see the last
// action committed to the blob store
type CommitMarkerError struct {
	MetadataSeq uint64
	BlobSeq     uint64
}

func (e CommitMarkerError) Error() string {
	return fmt.Sprintf(
		"commit marker mismatch: %d (metadata) != %d (blob)",
		e.MetadataSeq,
		e.BlobSeq,
	)
}

func (d *Database) checkCommitMarker() error {
	// Get value from metadata
	metadataSeq, metadataErr := d.Metadata().GetCommitSeq()
	if metadataErr != nil {
		return fmt.Errorf(
			"failed to get metadata commit marker: %w",
			metadataErr,
		)
	}
	// Get value from blob
	blobSeq, blobErr := d.Blob().GetCommitSeq()
	if blobErr != nil {
		return fmt.Errorf(
			"failed to get blob commit marker: %w",
			blobErr,
		)
	}
	// Compare values. A fresh metadata store next to an existing log is a
	// mismatch too.
	if blobSeq != metadataSeq {
		return CommitMarkerError{
			MetadataSeq: metadataSeq,
			BlobSeq:     blobSeq,
		}
	}
	return nil
}

func (d *Database) updateCommitMarker(txn *Txn, seq uint64) error {
	// Update metadata
	if err := d.Metadata().SetCommitSeq(seq, txn.Metadata()); err != nil {
		return err
	}
	// Update blob
	if err := d.Blob().SetCommitSeq(seq, txn.Blob()); err != nil {
		return err
	}
	return nil
}
