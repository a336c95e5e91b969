package control

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"gorm.io/gorm/clause"

	"github.com/go-ringdht/log"
	"github.com/go-ringdht/repository"
	"github.com/go-ringdht/ring"
)

const storagePrefix = "/storage/"

// Datum is one ring-local data item. Hash is the key's ring identifier,
// kept alongside the key so a future range handover can select items by
// owner.
type Datum struct {
	Key   string `gorm:"primaryKey"`
	Hash  uint16 `gorm:"index"`
	Value []byte
}

// storageHandler serves the data plane. Requests for keys owned elsewhere
// are redirected to the owner's HTTP endpoint; requests whose owner is
// unknown get a 503 with Retry-After and trigger a ring lookup.
func storageHandler(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, storagePrefix)
	if key == "" {
		writeResponse(w, http.StatusNotFound, nil, nil)
		return
	}

	id := ring.HashOf([]byte(key))
	n := getNode()

	owner, ok := n.Responsible(id)
	if !ok || owner.IsZero() {
		if err := n.Lookup(id); err != nil {
			writeResponse(w, http.StatusInternalServerError, nil, badResp{err.Error(), "Failed to send lookup."})
			return
		}
		writeResponse(w, http.StatusServiceUnavailable, map[string]string{"Retry-After": "1"}, nil)
		return
	}
	if !owner.Equal(n.Self()) {
		location := fmt.Sprintf("http://%d.%d.%d.%d:%d%s%s",
			owner.IP[0], owner.IP[1], owner.IP[2], owner.IP[3], owner.Port, storagePrefix, key)
		writeResponse(w, http.StatusSeeOther, map[string]string{"Location": location}, nil)
		return
	}

	switch r.Method {
	case "GET":
		var datum Datum
		if result := repository.GetDB().First(&datum, "key = ?", key); result.Error != nil {
			writeResponse(w, http.StatusNotFound, nil, nil)
			return
		}
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(datum.Value); err != nil {
			log.Log().Errorf("Failed to write body: %s", err)
		}
	case "PUT":
		value, err := io.ReadAll(r.Body)
		if err != nil {
			writeResponse(w, http.StatusInternalServerError, nil, badResp{err.Error(), "Failed to read request body."})
			return
		}
		datum := Datum{Key: key, Hash: uint16(id), Value: value}
		if result := repository.GetDB().Clauses(clause.OnConflict{UpdateAll: true}).Create(&datum); result.Error != nil {
			writeResponse(w, http.StatusInternalServerError, nil, badResp{result.Error.Error(), "Failed to store item."})
			return
		}
		writeResponse(w, http.StatusCreated, nil, nil)
	case "DELETE":
		result := repository.GetDB().Delete(&Datum{}, "key = ?", key)
		if result.Error != nil {
			writeResponse(w, http.StatusInternalServerError, nil, badResp{result.Error.Error(), "Failed to delete item."})
			return
		}
		if result.RowsAffected == 0 {
			writeResponse(w, http.StatusNotFound, nil, nil)
			return
		}
		writeResponse(w, http.StatusNoContent, nil, nil)
	default:
		writeResponse(w, http.StatusMethodNotAllowed, map[string]string{"Allow": "GET, PUT, DELETE"}, nil)
	}
}
