package transport

import (
	"slices"

	"github.com/dmitrymomot/relaykit/core/relay"
)

type connectRequest struct {
	Username        string               `json:"username"`
	ConnID          string               `json:"conn_id,omitempty"`
	Channels        []string             `json:"channels,omitempty"`
	State           map[string]any       `json:"state,omitempty"`
	StatePublicKeys []string             `json:"state_public_keys,omitempty"`
	ChannelConfigs  relay.ChannelConfigs `json:"channel_configs,omitempty"`
}

type connectResponse struct {
	ConnID       string                 `json:"conn_id"`
	State        map[string]any         `json:"state"`
	Channels     []string               `json:"channels"`
	ChannelsInfo map[string]channelInfo `json:"channels_info"`
}

type subscribeRequest struct {
	ConnID         string               `json:"conn_id"`
	Channels       []string             `json:"channels"`
	ChannelConfigs relay.ChannelConfigs `json:"channel_configs,omitempty"`
}

type subscribeResponse struct {
	Channels     []string               `json:"channels"`
	ChannelsInfo map[string]channelInfo `json:"channels_info"`
}

type publishRequest struct {
	Channel  string `json:"channel,omitempty"`
	Username string `json:"username,omitempty"`
	User     string `json:"user,omitempty"`
	Type     string `json:"type,omitempty"`
	Message  any    `json:"message"`
}

type publishResponse struct {
	Recipients int `json:"recipients"`
}

type disconnectRequest struct {
	ConnID string `json:"conn_id"`
}

type disconnectResponse struct {
	Disconnected bool `json:"disconnected"`
}

type forceDisconnectResponse struct {
	MarkedForCollection bool `json:"marked_for_collection"`
}

type channelInfo struct {
	LongName         string               `json:"long_name"`
	History          []relay.Message      `json:"history"`
	Users            []relay.UserPresence `json:"users"`
	TotalConnections int                  `json:"total_connections"`
	Config           relay.ChannelConfig  `json:"config"`
}

type userInfo struct {
	User        string         `json:"user"`
	State       map[string]any `json:"state"`
	Connections int            `json:"connections"`
}

type infoResponse struct {
	Users    []userInfo             `json:"users"`
	Channels map[string]channelInfo `json:"channels"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// channelsInfo builds per-channel snapshots for the named channels;
// names that no longer resolve are skipped.
func (s *Service) channelsInfo(names []string) map[string]channelInfo {
	info := make(map[string]channelInfo, len(names))
	for _, name := range names {
		ch, ok := s.registry.Channel(name)
		if !ok {
			continue
		}
		info[name] = s.channelInfo(ch)
	}
	return info
}

func (s *Service) channelInfo(ch *relay.Channel) channelInfo {
	history := ch.History()
	if history == nil {
		history = []relay.Message{}
	}
	return channelInfo{
		LongName:         ch.LongName(),
		History:          history,
		Users:            ch.UserPresences(),
		TotalConnections: ch.ConnectionCount(),
		Config:           ch.Config(),
	}
}

func (s *Service) usersInfo() []userInfo {
	users := s.registry.Users()
	info := make([]userInfo, 0, len(users))
	for _, u := range users {
		info = append(info, userInfo{
			User:        u.Username(),
			State:       u.State(),
			Connections: u.ConnectionCount(),
		})
	}
	slices.SortFunc(info, func(a, b userInfo) int {
		switch {
		case a.User < b.User:
			return -1
		case a.User > b.User:
			return 1
		default:
			return 0
		}
	})
	return info
}
