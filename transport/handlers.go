package transport

import (
	"net/http"

	"github.com/dmitrymomot/relaykit/core/logger"
	"github.com/dmitrymomot/relaykit/core/relay"
)

func (s *Service) handleConnect(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.Username == "" {
		badRequest(w, "username is required")
		return
	}

	conn, user, err := s.registry.Connect(req.Username, req.ConnID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.State != nil {
		user.SetState(req.State)
	}
	if req.StatePublicKeys != nil {
		user.SetPublicKeys(req.StatePublicKeys)
	}

	channels := []string{}
	if len(req.Channels) > 0 {
		channels, err = s.dispatcher.Subscribe(conn.ID(), req.Channels, req.ChannelConfigs)
		if err != nil {
			// Do not leave a half-connected client behind.
			_ = s.dispatcher.Disconnect(conn.ID())
			s.writeError(w, r, err)
			return
		}
	}

	s.logger.InfoContext(r.Context(), "client connected",
		logger.ConnectionID(conn.ID()),
		logger.Username(req.Username),
	)
	writeJSON(w, http.StatusOK, connectResponse{
		ConnID:       conn.ID(),
		State:        user.State(),
		Channels:     channels,
		ChannelsInfo: s.channelsInfo(channels),
	})
}

func (s *Service) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.ConnID == "" {
		badRequest(w, "conn_id is required")
		return
	}

	channels, err := s.dispatcher.Subscribe(req.ConnID, req.Channels, req.ChannelConfigs)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, subscribeResponse{
		Channels:     channels,
		ChannelsInfo: s.channelsInfo(channels),
	})
}

func (s *Service) handleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.ConnID == "" {
		badRequest(w, "conn_id is required")
		return
	}

	channels, err := s.dispatcher.Unsubscribe(req.ConnID, req.Channels)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, subscribeResponse{
		Channels:     channels,
		ChannelsInfo: s.channelsInfo(channels),
	})
}

func (s *Service) handleMessage(w http.ResponseWriter, r *http.Request) {
	var reqs []publishRequest
	if err := decode(r, &reqs); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	recipients := 0
	for _, req := range reqs {
		if req.Channel == "" && req.Username == "" {
			badRequest(w, "each message needs a channel or username target")
			return
		}
		var channels, usernames []string
		if req.Channel != "" {
			channels = []string{req.Channel}
		}
		if req.Username != "" {
			usernames = []string{req.Username}
		}

		count, err := s.dispatcher.Publish(relay.Message{
			Type:    req.Type,
			User:    req.User,
			Payload: req.Message,
		}, channels, usernames)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		recipients += count
	}
	writeJSON(w, http.StatusOK, publishResponse{Recipients: recipients})
}

func (s *Service) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	var req disconnectRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	if err := s.dispatcher.Disconnect(req.ConnID); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.InfoContext(r.Context(), "client disconnected", logger.ConnectionID(req.ConnID))
	writeJSON(w, http.StatusOK, disconnectResponse{Disconnected: true})
}

func (s *Service) handleInfo(w http.ResponseWriter, r *http.Request) {
	channels := make(map[string]channelInfo)
	for _, ch := range s.registry.Channels() {
		channels[ch.Name()] = s.channelInfo(ch)
	}
	writeJSON(w, http.StatusOK, infoResponse{
		Users:    s.usersInfo(),
		Channels: channels,
	})
}

func (s *Service) handleChannelConfig(w http.ResponseWriter, r *http.Request) {
	var configs relay.ChannelConfigs
	if err := decode(r, &configs); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	result := make(relay.ChannelConfigs, len(configs))
	for name, cfg := range configs {
		ch, ok := s.registry.Channel(name)
		if !ok {
			var err error
			ch, err = s.registry.EnsureChannel(name, name, relay.ChannelConfigs{name: cfg})
			if err != nil {
				s.writeError(w, r, err)
				return
			}
		} else if err := ch.Reconfigure(cfg); err != nil {
			s.writeError(w, r, err)
			return
		}
		result[name] = ch.Config()
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Service) handleForceDisconnect(w http.ResponseWriter, r *http.Request) {
	var req disconnectRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	conn, ok := s.registry.Connection(req.ConnID)
	if !ok {
		s.writeError(w, r, relay.ErrConnectionNotFound)
		return
	}
	// Mark for collection instead of tearing down immediately so a
	// blocked drain can still return the pending batch.
	conn.MarkIdle()
	conn.Heartbeat()
	writeJSON(w, http.StatusOK, forceDisconnectResponse{MarkedForCollection: true})
}
