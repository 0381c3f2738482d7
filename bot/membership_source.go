package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"drawbot/domain/entities"
	"drawbot/domain/interfaces"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const memberPageSize = 1000

var _ interfaces.MembershipSource = (*GuildMembershipSource)(nil)

// memberAPI is the REST surface used for full member fetches
type memberAPI interface {
	GuildMembers(guildID string, after string, limit int, options ...discordgo.RequestOption) ([]*discordgo.Member, error)
}

// RateLimiter manages API call rate limiting
type RateLimiter struct {
	mutex       sync.Mutex
	lastCall    time.Time
	minInterval time.Duration
}

// Wait waits if necessary to respect rate limits
func (rl *RateLimiter) Wait(ctx context.Context) error {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	elapsed := time.Since(rl.lastCall)
	if elapsed < rl.minInterval {
		waitTime := rl.minInterval - elapsed
		log.Debugf("Rate limiting: waiting %v before next API call", waitTime)

		select {
		case <-time.After(waitTime):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	rl.lastCall = time.Now()
	return nil
}

// GuildMembershipSource provides the members of one guild. Lookups read the last
// full fetch while it is fresh and otherwise fall back to the gateway state cache,
// which can be incomplete for large guilds until Refresh succeeds.
type GuildMembershipSource struct {
	api     memberAPI
	state   *discordgo.State
	guildID string

	cache       []*discordgo.Member
	cacheExpiry time.Time
	cacheTTL    time.Duration
	cacheMutex  sync.RWMutex

	rateLimiter *RateLimiter
	backoffBase time.Duration
	maxRetries  int
}

// NewGuildMembershipSource creates a membership source backed by a discordgo session
func NewGuildMembershipSource(session *discordgo.Session, guildID string) *GuildMembershipSource {
	return newGuildMembershipSource(session, session.State, guildID)
}

func newGuildMembershipSource(api memberAPI, state *discordgo.State, guildID string) *GuildMembershipSource {
	return &GuildMembershipSource{
		api:      api,
		state:    state,
		guildID:  guildID,
		cacheTTL: 5 * time.Minute,
		rateLimiter: &RateLimiter{
			minInterval: 1 * time.Second,
		},
		backoffBase: 1 * time.Second,
		maxRetries:  3,
	}
}

// FetchMembersWithRole returns the known members holding roleID
func (m *GuildMembershipSource) FetchMembersWithRole(ctx context.Context, roleID string) ([]entities.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	members, fresh := m.cachedMembers()
	if !fresh {
		var err error
		members, err = m.stateMembers()
		if err != nil {
			return nil, err
		}
	}

	candidates := make([]entities.Candidate, 0)
	for _, member := range members {
		if member == nil || member.User == nil {
			continue
		}
		if !hasRole(member, roleID) {
			continue
		}
		candidates = append(candidates, toCandidate(member))
	}

	log.WithFields(log.Fields{
		"guild_id": m.guildID,
		"role_id":  roleID,
		"members":  len(candidates),
		"fresh":    fresh,
	}).Debug("Resolved members with role")

	return candidates, nil
}

// Refresh fetches every guild member over REST with pagination
func (m *GuildMembershipSource) Refresh(ctx context.Context) error {
	var allMembers []*discordgo.Member
	after := ""

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := m.rateLimiter.Wait(ctx); err != nil {
			return err
		}

		batch, err := m.fetchMemberBatchWithRetry(ctx, after)
		if err != nil {
			return err
		}

		for _, member := range batch {
			if member != nil && member.User != nil {
				allMembers = append(allMembers, member)
			}
		}

		if len(batch) < memberPageSize {
			log.Debugf("Fetched all %d members for guild %s", len(allMembers), m.guildID)
			break
		}

		last := batch[len(batch)-1]
		if last == nil || last.User == nil {
			log.Warnf("Unable to determine next pagination token, stopping at %d members", len(allMembers))
			break
		}
		after = last.User.ID
	}

	m.updateMemberCache(allMembers)
	return nil
}

// InvalidateCache drops the last full fetch
func (m *GuildMembershipSource) InvalidateCache() {
	m.cacheMutex.Lock()
	m.cache = nil
	m.cacheExpiry = time.Time{}
	m.cacheMutex.Unlock()
}

func (m *GuildMembershipSource) cachedMembers() ([]*discordgo.Member, bool) {
	m.cacheMutex.RLock()
	defer m.cacheMutex.RUnlock()

	if m.cache != nil && time.Now().Before(m.cacheExpiry) {
		return m.cache, true
	}
	return nil, false
}

func (m *GuildMembershipSource) stateMembers() ([]*discordgo.Member, error) {
	if m.state == nil {
		return nil, nil
	}

	guild, err := m.state.Guild(m.guildID)
	if err != nil {
		if errors.Is(err, discordgo.ErrStateNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read guild %s from state: %w", m.guildID, err)
	}

	m.state.RLock()
	defer m.state.RUnlock()
	members := make([]*discordgo.Member, len(guild.Members))
	copy(members, guild.Members)
	return members, nil
}

// fetchMemberBatchWithRetry fetches a batch of members with exponential backoff retry
func (m *GuildMembershipSource) fetchMemberBatchWithRetry(ctx context.Context, after string) ([]*discordgo.Member, error) {
	for attempt := 0; attempt <= m.maxRetries; attempt++ {
		batch, err := m.api.GuildMembers(m.guildID, after, memberPageSize, discordgo.WithContext(ctx))
		if err == nil {
			return batch, nil
		}

		if !isRateLimitError(err) {
			return nil, fmt.Errorf("failed to fetch guild members: %w", err)
		}

		if attempt >= m.maxRetries {
			return nil, fmt.Errorf("exceeded max retries for rate limit: %w", err)
		}

		waitTime := m.backoffBase * time.Duration(1<<uint(attempt))
		log.Warnf("Hit rate limit, waiting %v before retry %d/%d", waitTime, attempt+1, m.maxRetries)

		select {
		case <-time.After(waitTime):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("unexpected retry loop exit")
}

func (m *GuildMembershipSource) updateMemberCache(members []*discordgo.Member) {
	m.cacheMutex.Lock()
	m.cache = members
	m.cacheExpiry = time.Now().Add(m.cacheTTL)
	m.cacheMutex.Unlock()

	log.Debugf("Cached %d members for guild %s", len(members), m.guildID)
}

// isRateLimitError checks if an error is a rate limit error
func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == http.StatusTooManyRequests {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "429") || strings.Contains(errStr, "rate limit")
}

func hasRole(member *discordgo.Member, roleID string) bool {
	for _, r := range member.Roles {
		if r == roleID {
			return true
		}
	}
	return false
}

func toCandidate(member *discordgo.Member) entities.Candidate {
	roles := make([]string, len(member.Roles))
	copy(roles, member.Roles)
	return entities.Candidate{
		ID:          member.User.ID,
		DisplayName: member.DisplayName(),
		RoleIDs:     roles,
		IsBot:       member.User.Bot,
	}
}
