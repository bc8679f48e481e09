package catalog

import (
	"context"
	"strings"

	"github.com/kamusis/skill-cortex/internal/frontmatter"
	"github.com/kamusis/skill-cortex/internal/logger"
	"github.com/kamusis/skill-cortex/internal/search/index"
	"github.com/kamusis/skill-cortex/internal/skills"
	"github.com/kamusis/skill-cortex/internal/tags"
)

// Outcome codes reported by ApplyTags besides the header codes.
const (
	CodeMissingSkillID = "missing_skill_id"
	CodeMissingTags    = tags.IssueMissingTags
	CodeInvalidTags    = tags.IssueInvalidTags
	CodeSkillNotFound  = "skill_not_found"
)

// TagUpdate requests new tags for one skill.
type TagUpdate struct {
	SkillID string   `json:"skill_id"`
	Tags    []string `json:"tags"`
}

// TagOutcome is the result of one TagUpdate.
type TagOutcome struct {
	OK      bool     `json:"ok"`
	SkillID string   `json:"skill_id"`
	Tags    []string `json:"tags,omitempty"`
	Error   string   `json:"error,omitempty"`
	Invalid []string `json:"invalid,omitempty"`
	Detail  string   `json:"detail,omitempty"`
}

// ApplyTags rewrites the tags of each requested skill and then rescans every
// root and saves the cache, even when no update succeeded. Updates fail
// independently; a failed one leaves its document untouched.
//
// The returned error reports only the rescan. Outcomes are always complete.
func (c *Catalog) ApplyTags(ctx context.Context, updates []TagUpdate) ([]TagOutcome, error) {
	if err := c.EnsureLoaded(ctx); err != nil {
		return nil, err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	log := logger.G(ctx)
	snap, _ := c.Snapshot()
	tax := c.Taxonomy()

	unlock, lockErr := index.Lock(c.opts.CachePath, c.opts.LockTimeout)
	if lockErr == nil {
		defer unlock()
	} else {
		log.WithError(lockErr).Warn("cannot lock index cache, cache will not be saved")
	}

	outcomes := make([]TagOutcome, 0, len(updates))
	for _, u := range updates {
		out := applyOne(snap, tax, u)
		if out.OK {
			log.WithField("skill_id", out.SkillID).WithField("tags", tags.Format(out.Tags)).Info("tags rewritten")
		} else {
			log.WithField("skill_id", out.SkillID).WithField("error", out.Error).Warn("tag update rejected")
		}
		outcomes = append(outcomes, out)
	}

	res, skipped := skills.Scan(c.opts.Roots, tax)
	logSkipped(ctx, skipped)
	c.replace(tax, res, skipped)

	if lockErr != nil {
		return outcomes, lockErr
	}
	if err := index.Save(c.opts.CachePath, res); err != nil {
		log.WithError(err).Warn("cannot persist index cache")
		return outcomes, err
	}
	return outcomes, nil
}

func applyOne(snap *skills.ScanResult, tax *tags.Taxonomy, u TagUpdate) TagOutcome {
	id := strings.TrimSpace(u.SkillID)
	out := TagOutcome{SkillID: id}
	if id == "" {
		out.Error = CodeMissingSkillID
		return out
	}
	normalized := tags.Normalize(u.Tags)
	if len(normalized) == 0 {
		out.Error = CodeMissingTags
		return out
	}
	if invalid := tax.Invalid(normalized); len(invalid) > 0 {
		out.Error = CodeInvalidTags
		out.Invalid = invalid
		return out
	}
	rec, ok := snap.Get(id)
	if !ok {
		out.Error = CodeSkillNotFound
		return out
	}
	if err := frontmatter.RewriteFileTags(rec.DocumentPath, normalized); err != nil {
		out.Error = frontmatter.Code(err)
		out.Detail = err.Error()
		return out
	}
	out.OK = true
	out.Tags = normalized
	return out
}
