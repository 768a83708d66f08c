package service

import (
	"encoding/base64"
	"encoding/json"
	"sort"

	"bizdir-backend/internal/dto"
)

// Cursor is the opaque forward-paging token. Recency feeds carry the last
// item's creation timestamp, geo feeds its distance; the id breaks ties. The
// server-side skip stays zero so pages remain consistent while the underlying
// set grows.
type Cursor struct {
	T  int64   `json:"t,omitempty"`
	D  float64 `json:"d,omitempty"`
	ID int64   `json:"id"`
}

// EncodeCursor serializes a cursor token.
func EncodeCursor(c Cursor) string {
	raw, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodeCursor parses a client-supplied token. Malformed tokens are a client
// error, never coerced.
func DecodeCursor(token string) (Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, NewValidationError(CodeInvalidCursor, "malformed cursor")
	}
	var c Cursor
	if err := json.Unmarshal(raw, &c); err != nil || c.ID == 0 {
		return Cursor{}, NewValidationError(CodeInvalidCursor, "malformed cursor")
	}
	return c, nil
}

// OffsetPage slices one offset-mode page out of the ranked set and reports
// totals. Totals come from the same pass that produced the candidates, so no
// second collection scan happens.
func OffsetPage(cands []Candidate, page, limit int) ([]Candidate, dto.PageInfo) {
	total := int64(len(cands))
	if page < 1 {
		page = 1
	}
	skip := (page - 1) * limit
	if skip > len(cands) {
		skip = len(cands)
	}
	end := skip + limit
	if end > len(cands) {
		end = len(cands)
	}
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return cands[skip:end], dto.PageInfo{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasMore:    int64(page*limit) < total,
	}
}

// SortRecencyCursor orders candidates by the key recency cursors encode:
// creation time descending, then id descending. Cursor feeds must page over
// exactly this order or pages overlap at tied timestamps.
func SortRecencyCursor(cands []Candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		ti, tj := cands[i].Listing.CreateTime, cands[j].Listing.CreateTime
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return cands[i].Listing.ID > cands[j].Listing.ID
	})
}

// SortGeoCursor orders candidates by the key geo cursors encode: distance
// ascending, then id ascending.
func SortGeoCursor(cands []Candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		if di, dj := distOf(&cands[i]), distOf(&cands[j]); di != dj {
			return di < dj
		}
		return cands[i].Listing.ID < cands[j].Listing.ID
	})
}

// CursorPageRecency pages a candidate set ordered by SortRecencyCursor.
// Items at or before the cursor key are dropped rather than skipped by
// offset.
func CursorPageRecency(cands []Candidate, token string, limit int) ([]Candidate, dto.CursorPage, error) {
	start := 0
	if token != "" {
		cur, err := DecodeCursor(token)
		if err != nil {
			return nil, dto.CursorPage{}, err
		}
		for i, c := range cands {
			t := c.Listing.CreateTime.UnixMilli()
			if t < cur.T || (t == cur.T && c.Listing.ID < cur.ID) {
				start = i
				break
			}
			start = len(cands)
		}
	}
	page := cands[start:]
	if len(page) > limit {
		page = page[:limit]
	}
	info := dto.CursorPage{Limit: limit, HasMore: len(page) == limit}
	if info.HasMore && len(page) > 0 {
		last := page[len(page)-1]
		info.NextCursor = EncodeCursor(Cursor{T: last.Listing.CreateTime.UnixMilli(), ID: last.Listing.ID})
	}
	return page, info, nil
}

// CursorPageGeo pages a candidate set ordered by SortGeoCursor.
func CursorPageGeo(cands []Candidate, token string, limit int) ([]Candidate, dto.CursorPage, error) {
	start := 0
	if token != "" {
		cur, err := DecodeCursor(token)
		if err != nil {
			return nil, dto.CursorPage{}, err
		}
		for i, c := range cands {
			d := distOf(&c)
			if d > cur.D || (d == cur.D && c.Listing.ID > cur.ID) {
				start = i
				break
			}
			start = len(cands)
		}
	}
	page := cands[start:]
	if len(page) > limit {
		page = page[:limit]
	}
	info := dto.CursorPage{Limit: limit, HasMore: len(page) == limit}
	if info.HasMore && len(page) > 0 {
		last := page[len(page)-1]
		info.NextCursor = EncodeCursor(Cursor{D: distOf(&last), ID: last.Listing.ID})
	}
	return page, info, nil
}
