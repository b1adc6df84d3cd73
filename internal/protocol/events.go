package protocol

import (
	"encoding/json"
	"time"

	"github.com/rickgao/coinstream/internal/model"
)

// EventKind is the outbound discriminator.
type EventKind string

const (
	EventConnectionEstablished EventKind = "connection_established"
	EventStatus                EventKind = "status"
	EventCacheUpdate           EventKind = "cache_update"
	EventWatchlistUpdate       EventKind = "watchlist_update"
	EventSearchResult          EventKind = "search_result"
	EventError                 EventKind = "error"
)

// StatusSuccess marks a successful search response.
const StatusSuccess = "SUCCESS"

// Event is one outbound frame.
type Event struct {
	Kind EventKind `json:"event"`
	Data any       `json:"data"`
}

// Encode serializes the event.
func (e Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// ConnectionEstablished is the first frame a subscriber receives.
type ConnectionEstablished struct {
	Message     string     `json:"message"`
	ServerTime  time.Time  `json:"serverTime"`
	LastUpdated *time.Time `json:"lastUpdated"`
	NextUpdate  time.Time  `json:"nextUpdate"`
	AuthMethod  string     `json:"authMethod"`
}

// Status reports freshness timestamps and whether a refresh is in flight.
type Status struct {
	LastUpdated *time.Time `json:"lastUpdated"`
	NextUpdate  time.Time  `json:"nextUpdate"`
	IsLoading   bool       `json:"isLoading"`
}

// CacheUpdate carries the full asset snapshot.
type CacheUpdate struct {
	LastUpdated *time.Time          `json:"lastUpdated"`
	NextUpdate  time.Time           `json:"nextUpdate"`
	Data        []model.AssetRecord `json:"data"`
}

// WatchlistUpdate carries one ranked view as asset ids.
type WatchlistUpdate struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Coins []string `json:"coins"`
}

// SearchResult answers one search request.
type SearchResult struct {
	Status    string              `json:"status"`
	RequestID string              `json:"requestID"`
	Source    string              `json:"source"`
	Data      []model.AssetRecord `json:"data"`
}

// NewConnectionEstablished builds the greeting frame.
func NewConnectionEstablished(now time.Time, last *time.Time, next time.Time, authMethod string) Event {
	return Event{Kind: EventConnectionEstablished, Data: ConnectionEstablished{
		Message:     "Connected to coinstream",
		ServerTime:  now.UTC(),
		LastUpdated: last,
		NextUpdate:  next.UTC(),
		AuthMethod:  authMethod,
	}}
}

// NewStatus builds a status frame.
func NewStatus(last *time.Time, next time.Time, loading bool) Event {
	return Event{Kind: EventStatus, Data: Status{
		LastUpdated: last,
		NextUpdate:  next.UTC(),
		IsLoading:   loading,
	}}
}

// NewCacheUpdate builds a full-snapshot frame. The snapshot is shared, not copied.
func NewCacheUpdate(snap *model.Snapshot, next time.Time) Event {
	data := snap.Assets
	if data == nil {
		data = []model.AssetRecord{}
	}
	return Event{Kind: EventCacheUpdate, Data: CacheUpdate{
		LastUpdated: snap.LastUpdated,
		NextUpdate:  next.UTC(),
		Data:        data,
	}}
}

// NewWatchlistUpdate builds a ranked-view frame.
func NewWatchlistUpdate(id, name string, coins []string) Event {
	if coins == nil {
		coins = []string{}
	}
	return Event{Kind: EventWatchlistUpdate, Data: WatchlistUpdate{
		ID:    id,
		Name:  name,
		Coins: coins,
	}}
}

// NewSearchResult builds a search response frame.
func NewSearchResult(requestID, source string, data []model.AssetRecord) Event {
	if data == nil {
		data = []model.AssetRecord{}
	}
	return Event{Kind: EventSearchResult, Data: SearchResult{
		Status:    StatusSuccess,
		RequestID: requestID,
		Source:    source,
		Data:      data,
	}}
}
