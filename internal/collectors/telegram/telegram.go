package telegram

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"

	"retag/internal/collectors"
	"retag/internal/logger"
	"retag/internal/parser"

	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/telegram/dcs"
	"github.com/gotd/td/tg"
	"golang.org/x/net/proxy"
)

const (
	defaultLimit   = 500
	maxHistoryPage = 100
)

// TelegramCollector logs in as a user and scrapes share-links and MTProto
// proxy links from the history of configured chats.
type TelegramCollector struct{}

type options struct {
	apiID       int
	apiHash     string
	limit       int
	sessionFile string
	chats       []int64
	proxyURL    string
}

func parseOptions(config map[string]interface{}) (*options, error) {
	opts := &options{
		apiID:       collectors.IntParam(config, "api_id"),
		apiHash:     collectors.StringParam(config, "api_hash"),
		limit:       collectors.IntParam(config, "limit"),
		sessionFile: collectors.StringParam(config, "session_file"),
		proxyURL:    collectors.StringParam(config, collectors.ProxyParam),
	}
	if opts.limit <= 0 {
		opts.limit = defaultLimit
	}
	if opts.sessionFile == "" {
		opts.sessionFile = "telegram.session"
	}

	// Chat IDs can be mixed types in YAML
	if chats, ok := config["chats"].([]interface{}); ok {
		for _, chat := range chats {
			switch id := chat.(type) {
			case int:
				opts.chats = append(opts.chats, int64(id))
			case int64:
				opts.chats = append(opts.chats, id)
			}
		}
	}

	if opts.apiID == 0 || opts.apiHash == "" {
		return nil, fmt.Errorf("missing api_id or api_hash (set them in params or TELEGRAM_API_ID / TELEGRAM_API_HASH)")
	}
	if len(opts.chats) == 0 {
		return nil, fmt.Errorf("missing 'chats' in collector config")
	}
	return opts, nil
}

// NewDialer builds a dialer for proxyURL (socks5:// or http://), or a direct one when empty.
func NewDialer(proxyURL string) (proxy.Dialer, error) {
	if proxyURL == "" {
		return proxy.Direct, nil
	}
	u, err := url.Parse(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy url: %w", err)
	}
	d, err := proxy.FromURL(u, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("unsupported proxy url %s: %w", proxyURL, err)
	}
	return d, nil
}

func (c *TelegramCollector) Collect(ctx context.Context, config map[string]interface{}) ([]string, error) {
	opts, err := parseOptions(config)
	if err != nil {
		return nil, err
	}

	dialer, err := NewDialer(opts.proxyURL)
	if err != nil {
		return nil, err
	}
	if opts.proxyURL != "" {
		logger.Log.Infof("Telegram using proxy: %s", opts.proxyURL)
	}

	if dir := filepath.Dir(opts.sessionFile); dir != "." && dir != "" {
		_ = os.MkdirAll(dir, 0700)
	}

	client := telegram.NewClient(opts.apiID, opts.apiHash, telegram.Options{
		SessionStorage: &telegram.FileSessionStorage{Path: opts.sessionFile},
		Resolver: dcs.Plain(dcs.PlainOptions{
			Dial: func(ctx context.Context, network, addr string) (net.Conn, error) {
				if cd, ok := dialer.(proxy.ContextDialer); ok {
					return cd.DialContext(ctx, network, addr)
				}
				return dialer.Dial(network, addr)
			},
		}),
	})

	var allLinks []string
	err = client.Run(ctx, func(ctx context.Context) error {
		flow := auth.NewFlow(termAuth{}, auth.SendCodeOptions{})
		if err := client.Auth().IfNecessary(ctx, flow); err != nil {
			return fmt.Errorf("authentication failed: %w", err)
		}
		logger.Log.Info("🔓 Telegram Login Successful")

		api := client.API()
		peers, err := resolvePeers(ctx, api)
		if err != nil {
			return err
		}

		for _, chatID := range opts.chats {
			peer, found := peers[chatID]
			if !found {
				logger.Log.Warnf("Could not resolve chat ID %d (User not joined or not in recent dialogs)", chatID)
				continue
			}
			links, fetched := scrapeChat(ctx, api, peer, opts.limit)
			logger.Log.Infof("📥 Chat %d: found %d links in %d messages.", chatID, len(links), fetched)
			allLinks = append(allLinks, links...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return parser.Deduplicate(allLinks), nil
}

// resolvePeers maps both bare and Bot-API style (-100...) chat IDs of recent
// dialogs to input peers.
func resolvePeers(ctx context.Context, api *tg.Client) (map[int64]tg.InputPeerClass, error) {
	logger.Log.Info("📇 Fetching dialog list to resolve access hashes...")
	dialogs, err := api.MessagesGetDialogs(ctx, &tg.MessagesGetDialogsRequest{
		OffsetPeer: &tg.InputPeerEmpty{},
		Limit:      100,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get dialogs: %w", err)
	}

	var chats []tg.ChatClass
	switch d := dialogs.(type) {
	case *tg.MessagesDialogs:
		chats = d.Chats
	case *tg.MessagesDialogsSlice:
		chats = d.Chats
	}

	peers := make(map[int64]tg.InputPeerClass)
	for _, chat := range chats {
		switch c := chat.(type) {
		case *tg.Channel:
			peer := &tg.InputPeerChannel{ChannelID: c.ID, AccessHash: c.AccessHash}
			peers[c.ID] = peer
			peers[channelBotID(c.ID)] = peer
		case *tg.Chat:
			peer := &tg.InputPeerChat{ChatID: c.ID}
			peers[c.ID] = peer
			peers[-c.ID] = peer
		}
	}
	return peers, nil
}

// scrapeChat pages backwards through history until limit messages were seen.
func scrapeChat(ctx context.Context, api *tg.Client, peer tg.InputPeerClass, limit int) ([]string, int) {
	var links []string
	fetched, offsetID := 0, 0

	for fetched < limit {
		batch := maxHistoryPage
		if remaining := limit - fetched; remaining < batch {
			batch = remaining
		}

		history, err := api.MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
			Peer:     peer,
			Limit:    batch,
			OffsetID: offsetID,
		})
		if err != nil {
			logger.Log.Errorf("Failed to fetch history batch: %v", err)
			break
		}

		var messages []tg.MessageClass
		switch h := history.(type) {
		case *tg.MessagesMessages:
			messages = h.Messages
		case *tg.MessagesMessagesSlice:
			messages = h.Messages
		case *tg.MessagesChannelMessages:
			messages = h.Messages
		}
		if len(messages) == 0 {
			break
		}

		for _, msg := range messages {
			m, ok := msg.(*tg.Message)
			if !ok {
				continue
			}
			links = append(links, parser.FindLinks(m.Message)...)
			if offsetID == 0 || m.ID < offsetID {
				offsetID = m.ID
			}
		}
		fetched += len(messages)
	}
	return links, fetched
}

func channelBotID(id int64) int64 { return -1000000000000 - id }

func init() {
	collectors.Register("telegram", func() collectors.Collector {
		return &TelegramCollector{}
	})
}
