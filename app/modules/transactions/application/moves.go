package transactionservice

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	dmservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/dm/application"
	leagueservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/league/application"
	"github.com/Black-And-White-Club/rsc-league-bot/app/shared/discord"
	"github.com/Black-And-White-Club/rsc-league-bot/app/shared/results"
	"github.com/bwmarrin/discordgo"
)

const cutNoticeColor = 0xE74C3C

func onTeam(m discord.Member, t leagueservice.Team) bool {
	return m.HasRole(t.FranchiseRoleID) && m.HasRole(t.TierRoleID)
}

func teamLabel(t leagueservice.Team) string {
	return fmt.Sprintf("%s (%s - %s)", t.Name, t.GMName, t.Tier)
}

// Sign puts a member on a team.
func (s *TransactionService) Sign(ctx context.Context, guildID, userID, teamName string) (TransactionResult[Transaction], error) {
	return withTelemetry(s, ctx, "Sign", guildID, func(ctx context.Context) (TransactionResult[Transaction], error) {
		channelID, err := s.TransChannel(ctx, guildID)
		if err != nil {
			return TransactionResult[Transaction]{}, err
		}
		if channelID == nil {
			return fail[Transaction](ErrNoTransChannel), nil
		}
		team, err := s.league.TeamByName(ctx, guildID, teamName)
		if err != nil {
			return businessOr[Transaction](err)
		}
		member, err := s.discord.Member(ctx, guildID, userID)
		if err != nil {
			return TransactionResult[Transaction]{}, err
		}
		if onTeam(member, team) {
			return fail[Transaction](fmt.Errorf("%w: %s", ErrAlreadyOnTeam, team.Name)), nil
		}

		if err := s.addToTeam(ctx, guildID, member, team); err != nil {
			return TransactionResult[Transaction]{}, err
		}
		if err := s.clearFreeAgentRoles(ctx, guildID, member); err != nil {
			return TransactionResult[Transaction]{}, err
		}

		text := fmt.Sprintf("%s was signed by the %s", member.Mention(), teamLabel(team))
		msgID, err := s.announce(ctx, *channelID, text)
		if err != nil {
			return TransactionResult[Transaction]{}, err
		}
		return results.SuccessResult[Transaction, Failure](Transaction{
			Kind:         KindSign,
			Members:      []string{member.ID},
			Announcement: text,
			MessageID:    msgID,
		}), nil
	})
}

// Cut releases a member from a team. Players become free agents of faTier,
// which defaults to the team's tier; general managers only lose the tier
// role. The guild's cut message is queued to the player when one is set.
func (s *TransactionService) Cut(ctx context.Context, guildID, userID, teamName, faTier string, origin *dmservice.Origin) (TransactionResult[Transaction], error) {
	return withTelemetry(s, ctx, "Cut", guildID, func(ctx context.Context) (TransactionResult[Transaction], error) {
		channelID, err := s.TransChannel(ctx, guildID)
		if err != nil {
			return TransactionResult[Transaction]{}, err
		}
		if channelID == nil {
			return fail[Transaction](ErrNoTransChannel), nil
		}
		team, err := s.league.TeamByName(ctx, guildID, teamName)
		if err != nil {
			return businessOr[Transaction](err)
		}
		member, err := s.discord.Member(ctx, guildID, userID)
		if err != nil {
			return TransactionResult[Transaction]{}, err
		}
		if !onTeam(member, team) {
			return fail[Transaction](fmt.Errorf("%w: %s", ErrNotOnTeam, team.Name)), nil
		}

		isGM, err := s.isGM(ctx, guildID, member)
		if err != nil {
			return TransactionResult[Transaction]{}, err
		}

		if isGM {
			if err := s.discord.RemoveRole(ctx, guildID, member.ID, team.TierRoleID); err != nil {
				return TransactionResult[Transaction]{}, err
			}
		} else {
			if faTier == "" {
				faTier = team.Tier
			}
			faRoles, err := s.league.FreeAgentRoles(ctx, guildID, faTier)
			if err != nil {
				return TransactionResult[Transaction]{}, err
			}
			if len(faRoles) < 2 {
				return fail[Transaction](fmt.Errorf("%w: %s", ErrFARoleMissing, leagueservice.FreeAgentTierRoleName(faTier))), nil
			}
			if err := s.discord.RemoveRole(ctx, guildID, member.ID, team.FranchiseRoleID); err != nil {
				return TransactionResult[Transaction]{}, err
			}
			nick := leagueservice.Nickname(FreeAgentPrefix, member.DisplayName())
			if err := s.discord.SetNickname(ctx, guildID, member.ID, nick); err != nil {
				return TransactionResult[Transaction]{}, err
			}
			for _, r := range faRoles {
				if err := s.discord.AddRole(ctx, guildID, member.ID, r.ID); err != nil {
					return TransactionResult[Transaction]{}, err
				}
			}
		}

		text := fmt.Sprintf("%s was cut by the %s", member.Mention(), teamLabel(team))
		msgID, err := s.announce(ctx, *channelID, text)
		if err != nil {
			return TransactionResult[Transaction]{}, err
		}

		sent, err := s.sendCutNotice(ctx, guildID, member, team, origin)
		if err != nil {
			return TransactionResult[Transaction]{}, err
		}
		return results.SuccessResult[Transaction, Failure](Transaction{
			Kind:          KindCut,
			Members:       []string{member.ID},
			Announcement:  text,
			MessageID:     msgID,
			CutNoticeSent: sent,
		}), nil
	})
}

// Trade swaps two players: the first joins firstTeam from secondTeam and the
// second joins secondTeam from firstTeam.
func (s *TransactionService) Trade(ctx context.Context, guildID, firstID, firstTeam, secondID, secondTeam string) (TransactionResult[Transaction], error) {
	return withTelemetry(s, ctx, "Trade", guildID, func(ctx context.Context) (TransactionResult[Transaction], error) {
		if firstID == secondID {
			return fail[Transaction](ErrSameMember), nil
		}
		channelID, err := s.TransChannel(ctx, guildID)
		if err != nil {
			return TransactionResult[Transaction]{}, err
		}
		if channelID == nil {
			return fail[Transaction](ErrNoTransChannel), nil
		}
		to1, err := s.league.TeamByName(ctx, guildID, firstTeam)
		if err != nil {
			return businessOr[Transaction](err)
		}
		to2, err := s.league.TeamByName(ctx, guildID, secondTeam)
		if err != nil {
			return businessOr[Transaction](err)
		}
		m1, err := s.discord.Member(ctx, guildID, firstID)
		if err != nil {
			return TransactionResult[Transaction]{}, err
		}
		m2, err := s.discord.Member(ctx, guildID, secondID)
		if err != nil {
			return TransactionResult[Transaction]{}, err
		}

		for _, c := range []struct {
			m        discord.Member
			from, to leagueservice.Team
		}{{m1, to2, to1}, {m2, to1, to2}} {
			if onTeam(c.m, c.to) {
				return fail[Transaction](fmt.Errorf("%w: %s", ErrAlreadyOnTeam, c.to.Name)), nil
			}
			if !onTeam(c.m, c.from) {
				return fail[Transaction](fmt.Errorf("%w: %s", ErrNotOnTeam, c.from.Name)), nil
			}
		}

		if err := s.discord.RemoveRole(ctx, guildID, m1.ID, to2.FranchiseRoleID); err != nil {
			return TransactionResult[Transaction]{}, err
		}
		if err := s.discord.RemoveRole(ctx, guildID, m2.ID, to1.FranchiseRoleID); err != nil {
			return TransactionResult[Transaction]{}, err
		}
		if err := s.addToTeam(ctx, guildID, m1, to1); err != nil {
			return TransactionResult[Transaction]{}, err
		}
		if err := s.addToTeam(ctx, guildID, m2, to2); err != nil {
			return TransactionResult[Transaction]{}, err
		}

		text := fmt.Sprintf("%s was traded by the %s to the %s for %s",
			m1.Mention(), teamLabel(to2), teamLabel(to1), m2.Mention())
		msgID, err := s.announce(ctx, *channelID, text)
		if err != nil {
			return TransactionResult[Transaction]{}, err
		}
		return results.SuccessResult[Transaction, Failure](Transaction{
			Kind:         KindTrade,
			Members:      []string{m1.ID, m2.ID},
			Announcement: text,
			MessageID:    msgID,
		}), nil
	})
}

// addToTeam gives the member the team's roles and the franchise prefix,
// dropping any other tier role they hold.
func (s *TransactionService) addToTeam(ctx context.Context, guildID string, member discord.Member, team leagueservice.Team) error {
	roles, err := s.discord.Roles(ctx, guildID)
	if err != nil {
		return err
	}
	tiers, err := s.league.Tiers(ctx, guildID)
	if err != nil {
		return err
	}
	for _, tier := range tiers {
		r, ok := discord.RoleByName(roles, tier)
		if ok && r.ID != team.TierRoleID && member.HasRole(r.ID) {
			if err := s.discord.RemoveRole(ctx, guildID, member.ID, r.ID); err != nil {
				return err
			}
		}
	}

	prefix, ok, err := s.league.Prefix(ctx, guildID, team.GMName)
	if err != nil {
		return err
	}
	if ok {
		if err := s.discord.SetNickname(ctx, guildID, member.ID, leagueservice.Nickname(prefix, member.DisplayName())); err != nil {
			return err
		}
	}

	add := []string{team.FranchiseRoleID, team.TierRoleID}
	if r, ok := discord.RoleByName(roles, LeagueRoleName); ok {
		add = append(add, r.ID)
	}
	for _, id := range add {
		if err := s.discord.AddRole(ctx, guildID, member.ID, id); err != nil {
			return err
		}
	}
	return nil
}

func (s *TransactionService) clearFreeAgentRoles(ctx context.Context, guildID string, member discord.Member) error {
	tiers, err := s.league.Tiers(ctx, guildID)
	if err != nil {
		return err
	}
	seen := map[string]bool{}
	for _, tier := range append([]string{""}, tiers...) {
		roles, err := s.league.FreeAgentRoles(ctx, guildID, tier)
		if err != nil {
			return err
		}
		for _, r := range roles {
			if seen[r.ID] || !member.HasRole(r.ID) {
				continue
			}
			seen[r.ID] = true
			if err := s.discord.RemoveRole(ctx, guildID, member.ID, r.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *TransactionService) isGM(ctx context.Context, guildID string, member discord.Member) (bool, error) {
	roles, err := s.discord.Roles(ctx, guildID)
	if err != nil {
		return false, err
	}
	r, ok := discord.RoleByName(roles, GMRoleName)
	return ok && member.HasRole(r.ID), nil
}

func (s *TransactionService) sendCutNotice(ctx context.Context, guildID string, member discord.Member, team leagueservice.Team, origin *dmservice.Origin) (bool, error) {
	if s.messenger == nil {
		return false, nil
	}
	tmpl, err := s.CutMessage(ctx, guildID)
	if err != nil {
		return false, err
	}
	if tmpl == nil || strings.TrimSpace(*tmpl) == "" {
		return false, nil
	}

	body := strings.NewReplacer(
		"{player}", leagueservice.Nickname("", member.DisplayName()),
		"{franchise}", team.Franchise,
		"{gm}", team.GMName,
		"{team}", team.Name,
		"{tier}", team.Tier,
	).Replace(*tmpl)

	err = s.messenger.Enqueue(ctx, dmservice.Request{
		GuildID:     guildID,
		RecipientID: member.ID,
		Origin:      origin,
		Message: discord.Message{Embed: &discordgo.MessageEmbed{
			Title:       "Message from " + team.Franchise,
			Description: body,
			Color:       cutNoticeColor,
		}},
	})
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to queue cut notice",
			slog.String("guild_id", guildID),
			slog.String("user_id", member.ID),
			slog.Any("error", err),
		)
		return false, nil
	}
	return true, nil
}
