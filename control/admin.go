package control

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/go-ringdht/config"
	"github.com/go-ringdht/log"
	"github.com/go-ringdht/ring"
)

const (
	ringStatePath    = "/admin/ring"
	lookupPath       = "/admin/lookup"
	initiateJoinPath = "/admin/join"
)

// StartAdminServer serves the admin and data planes. ringPort is used
// when no admin port is configured; by convention peers serve HTTP on
// their ring port number over TCP. Blocks until the server stops.
func StartAdminServer(config *config.Config, ringPort uint16) error {
	http.HandleFunc(ringStatePath, ringState)
	http.HandleFunc(lookupPath, lookupHandler)
	http.HandleFunc(initiateJoinPath, initiateJoin)
	http.HandleFunc(storagePrefix, storageHandler)
	port := int(ringPort)
	if config.Admin.Port != 0 {
		port = config.Admin.Port
	}
	log.Log().Infof("Starting http server on port %d", port)
	return http.ListenAndServe(fmt.Sprintf(":%d", port), nil)
}

type peerView struct {
	ID   uint16 `json:"id"`
	Addr string `json:"addr"`
}

func viewOf(p ring.Peer) *peerView {
	if p.IsZero() {
		return nil
	}
	return &peerView{
		ID:   uint16(p.ID),
		Addr: fmt.Sprintf("%d.%d.%d.%d:%d", p.IP[0], p.IP[1], p.IP[2], p.IP[3], p.Port),
	}
}

type badResp struct {
	Err    string `json:"err"`
	Detail string `json:"detail"`
}

type ringStateResp struct {
	Self        *peerView `json:"self"`
	Predecessor *peerView `json:"predecessor"`
	Successor   *peerView `json:"successor"`
	CachedPeers int       `json:"cachedPeers"`
}

func ringState(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		writeResponse(w, http.StatusMethodNotAllowed, map[string]string{"Allow": "GET"}, nil)
		return
	}
	n := getNode()
	resp := ringStateResp{
		Self:        viewOf(n.Self()),
		Predecessor: viewOf(n.Predecessor()),
		Successor:   viewOf(n.Successor()),
		CachedPeers: n.CachedPeers(),
	}
	writeResponse(w, http.StatusOK, nil, resp)
}

// tickets tracks lookups issued on behalf of admin clients, keyed by
// request id.
var tickets sync.Map

type lookupRequest struct {
	Key string `json:"key"`
}

type lookupResp struct {
	Hash      uint16    `json:"hash"`
	Owner     *peerView `json:"owner,omitempty"`
	RequestID string    `json:"requestId,omitempty"`
}

func lookupHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "POST":
		initiateLookup(w, r)
	case "GET":
		pollLookup(w, r)
	default:
		writeResponse(w, http.StatusMethodNotAllowed, map[string]string{"Allow": "GET, POST"}, nil)
	}
}

func initiateLookup(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeResponse(w, http.StatusInternalServerError, nil, badResp{err.Error(), "Failed to read request body."})
		return
	}

	var req lookupRequest
	if err := json.Unmarshal(data, &req); err != nil {
		writeResponse(w, http.StatusUnprocessableEntity, nil, badResp{err.Error(), "Invalid body format."})
		return
	}

	id := ring.HashOf([]byte(req.Key))
	n := getNode()
	if owner, ok := n.Responsible(id); ok && !owner.IsZero() {
		writeResponse(w, http.StatusOK, nil, lookupResp{Hash: uint16(id), Owner: viewOf(owner)})
		return
	}

	if err := n.Lookup(id); err != nil {
		writeResponse(w, http.StatusInternalServerError, nil, badResp{err.Error(), "Failed to send lookup."})
		return
	}
	requestID := uuid.NewString()
	tickets.Store(requestID, id)
	log.Log().Infof("Issued lookup %s for hash %d", requestID, id)
	writeResponse(w, http.StatusAccepted, nil, lookupResp{Hash: uint16(id), RequestID: requestID})
}

func pollLookup(w http.ResponseWriter, r *http.Request) {
	requestID := r.URL.Query().Get("id")
	v, ok := tickets.Load(requestID)
	if !ok {
		writeResponse(w, http.StatusNotFound, nil, badResp{"unknown request id", requestID})
		return
	}

	id := v.(ring.ID)
	if owner, ok := getNode().Responsible(id); ok && !owner.IsZero() {
		tickets.Delete(requestID)
		writeResponse(w, http.StatusOK, nil, lookupResp{Hash: uint16(id), Owner: viewOf(owner), RequestID: requestID})
		return
	}
	writeResponse(w, http.StatusAccepted, nil, lookupResp{Hash: uint16(id), RequestID: requestID})
}

type adminJoinRequest struct {
	TargetNode string `json:"targetNode"`
}

func initiateJoin(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		writeResponse(w, http.StatusMethodNotAllowed, map[string]string{"Allow": "POST"}, nil)
		return
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeResponse(w, http.StatusInternalServerError, nil, badResp{err.Error(), "Failed to read request body."})
		return
	}

	var req adminJoinRequest
	if err := json.Unmarshal(data, &req); err != nil {
		writeResponse(w, http.StatusUnprocessableEntity, nil, badResp{err.Error(), "Invalid body format."})
		return
	}

	ip, port, err := ring.ParseAddr(req.TargetNode)
	if err != nil {
		writeResponse(w, http.StatusUnprocessableEntity, nil, badResp{err.Error(), "Invalid target node endpoint."})
		return
	}

	log.Log().Infof("Received request to join via %s", req.TargetNode)
	if err := getNode().SendJoin(ring.Peer{IP: ip, Port: port}); err != nil {
		writeResponse(w, http.StatusInternalServerError, nil, badResp{err.Error(), "Failed to send join."})
		return
	}
	writeResponse(w, http.StatusOK, nil, nil)
}

func writeResponse(w http.ResponseWriter, status int, headers map[string]string, jsonBody interface{}) {
	if headers != nil {
		for k, v := range headers {
			w.Header().Add(k, v)
		}
	}
	if jsonBody != nil {
		w.Header().Add("Content-Type", "application/json")
	}
	w.WriteHeader(status)
	if jsonBody != nil {
		m, err := json.Marshal(jsonBody)
		if err != nil {
			log.Log().Errorf("Failed to serialize body: %s", err)
			return
		}
		if _, err := w.Write(m); err != nil {
			log.Log().Errorf("Failed to write body: %s", err)
		}
	}
}
