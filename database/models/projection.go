// Copyright 2026 The Clubledger Authors
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
package models

// Projection is the set of row changes produced by one applied action. Rows
// are pointers to model structs with their primary key populated.
type Projection struct {
	Upserts []any
	Deletes []any
}

func (p *Projection) Upsert(rows ...any) {
	p.Upserts = append(p.Upserts, rows...)
}

func (p *Projection) Delete(rows ...any) {
	p.Deletes = append(p.Deletes, rows...)
}

func (p *Projection) Empty() bool {
	return len(p.Upserts) == 0 && len(p.Deletes) == 0
}

func (p *Projection) Len() int {
	return len(p.Upserts) + len(p.Deletes)
}
