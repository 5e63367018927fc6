package handlers

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/bwmarrin/discordgo"
	"github.com/labstack/echo/v4"

	"github.com/donaldgifford/restock-monitor/internal/metrics"
	"github.com/donaldgifford/restock-monitor/internal/notify"
	"github.com/donaldgifford/restock-monitor/internal/pause"
)

// Slash command names.
const (
	CommandPause  = "pause"
	CommandResume = "resume"
	CommandStatus = "status"
)

// SlashCommands returns the application commands served by the
// interactions endpoint.
func SlashCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{Name: CommandPause, Description: "Apple 整備済製品の在庫監視を一時停止する"},
		{Name: CommandResume, Description: "Apple 整備済製品の在庫監視を再開する"},
		{Name: CommandStatus, Description: "現在の在庫監視の稼働状況を確認する"},
	}
}

// InteractionsHandler serves Discord's interactions webhook. Every request
// is verified against the application's Ed25519 public key.
type InteractionsHandler struct {
	key  ed25519.PublicKey
	flag pause.Flag
	log  *slog.Logger
}

// ParsePublicKey decodes a hex-encoded Ed25519 public key as shown in the
// Discord developer portal.
func ParsePublicKey(s string) (ed25519.PublicKey, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decoding public key: %w", err)
	}
	if len(b) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("public key must be %d bytes, got %d", ed25519.PublicKeySize, len(b))
	}
	return ed25519.PublicKey(b), nil
}

// NewInteractionsHandler creates an InteractionsHandler.
func NewInteractionsHandler(key ed25519.PublicKey, f pause.Flag, log *slog.Logger) *InteractionsHandler {
	if log == nil {
		log = slog.Default()
	}
	return &InteractionsHandler{key: key, flag: f, log: log}
}

// Handle is the echo handler for POST /discord/interactions.
func (h *InteractionsHandler) Handle(c echo.Context) error {
	r := c.Request()
	if !discordgo.VerifyInteraction(r, h.key) {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid request signature"})
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unreadable body"})
	}

	var in discordgo.Interaction
	if err := json.Unmarshal(body, &in); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "malformed interaction"})
	}

	if in.Type != discordgo.InteractionApplicationCommand {
		return c.JSON(http.StatusOK, discordgo.InteractionResponse{Type: discordgo.InteractionResponsePong})
	}

	name := in.ApplicationCommandData().Name
	h.log.Info("slash command", "command", name, "user", invoker(&in))

	resp := h.dispatch(r.Context(), name)
	return c.JSON(http.StatusOK, resp)
}

func (h *InteractionsHandler) dispatch(ctx context.Context, name string) *discordgo.InteractionResponse {
	backend := h.flag.Backend()

	switch name {
	case CommandPause:
		if err := h.set(ctx, true); err != nil {
			return ephemeral(fmt.Sprintf("❌ 一時停止に失敗しました（%s エラー）", backend), notify.ColorRed)
		}
		return ephemeral("⏸️ **在庫監視を一時停止しました**\n再開するには `/resume` を実行してください。", notify.ColorOrange)

	case CommandResume:
		if err := h.set(ctx, false); err != nil {
			return ephemeral(fmt.Sprintf("❌ 再開に失敗しました（%s エラー）", backend), notify.ColorRed)
		}
		return ephemeral("▶️ **在庫監視を再開しました**\n次のスケジュール実行からチェックが再開されます。", notify.ColorGreen)

	case CommandStatus:
		paused, err := h.flag.Paused(ctx)
		if err != nil {
			h.log.Error("reading pause flag", "backend", backend, "error", err)
			return ephemeral(fmt.Sprintf("⚠️ 状態の取得に失敗しました（%s エラー）", backend), notify.ColorOrange)
		}
		metrics.Paused.Set(boolGauge(paused))
		if paused {
			return ephemeral("⏸️ **現在：一時停止中**\n`/resume` で再開できます。", notify.ColorOrange)
		}
		return ephemeral("✅ **現在：監視稼働中**\n`/pause` で一時停止できます。", notify.ColorGreen)

	default:
		return ephemeral(fmt.Sprintf("❓ 不明なコマンドです: /%s", name), notify.ColorRed)
	}
}

func (h *InteractionsHandler) set(ctx context.Context, paused bool) error {
	action := actionFor(paused)
	if err := h.flag.SetPaused(ctx, paused); err != nil {
		metrics.PauseToggleTotal.WithLabelValues(action, "failed").Inc()
		h.log.Error("writing pause flag", "action", action, "backend", h.flag.Backend(), "error", err)
		return err
	}
	metrics.PauseToggleTotal.WithLabelValues(action, "ok").Inc()
	metrics.Paused.Set(boolGauge(paused))
	return nil
}

func ephemeral(content string, color int) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{{Description: content, Color: color}},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	}
}

func invoker(in *discordgo.Interaction) string {
	switch {
	case in.Member != nil && in.Member.User != nil:
		return in.Member.User.Username
	case in.User != nil:
		return in.User.Username
	default:
		return ""
	}
}
