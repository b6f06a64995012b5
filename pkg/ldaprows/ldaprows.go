// Package ldaprows is a reference implementation of the row loader the
// access-control core's compiler contract expects: it fetches the
// assignment x policy x attribute-rule join for one principal from a
// directory server and decodes it into acl.AclRow values. The core itself
// never imports this package; DN parsing, filter construction and LDAP
// transport live here, outside the evaluation hot path, exactly as the
// core's scope boundary requires.
package ldaprows

import (
	"bytes"
	"context"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/go-ldap/ldap/v3"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"

	"github.com/heracles-ldap/aclcore/pkg/acl"
	"github.com/heracles-ldap/aclcore/pkg/log"
)

var loaderLog = log.New("ldaprows")

// Searcher is the subset of *ldap.Conn the loader needs. Production callers
// pass a live *ldap.Conn; tests pass a fake that returns canned entries, so
// the loader's row-decoding logic can be exercised without a directory
// server.
type Searcher interface {
	Search(req *ldap.SearchRequest) (*ldap.SearchResult, error)
}

// Config describes where assignment entries live and how to find the ones
// for a given principal.
type Config struct {
	// PolicyBaseDN is the subtree searched for assignment entries.
	PolicyBaseDN string `mapstructure:"policy_base_dn"`
	// AssignmentFilter is a text/template (with sprig functions available)
	// rendered with {{.UserDN}} to produce the LDAP filter string, e.g.
	// "(&(objectClass=aclAssignment)(aclPrincipal={{.UserDN | lower}}))".
	AssignmentFilter string `mapstructure:"assignment_filter"`
}

// Loader fetches and decodes AclRow values for one principal at a time.
type Loader struct {
	conn   Searcher
	c      Config
	filter *template.Template
}

// New builds a Loader bound to conn. It fails only if AssignmentFilter does
// not parse as a template.
func New(conn Searcher, c Config) (*Loader, error) {
	tmpl, err := template.New("assignmentFilter").Funcs(sprig.TxtFuncMap()).Parse(c.AssignmentFilter)
	if err != nil {
		return nil, errors.Wrap(err, "ldaprows: invalid assignment filter template")
	}
	return &Loader{conn: conn, c: c, filter: tmpl}, nil
}

// LoadRows searches for and decodes every assignment row belonging to
// userDN, in the order the directory server returns them. Row order
// determines compiler tie-breaking for equal-priority rules, so callers
// that need deterministic ordering across directory replicas should sort
// upstream of this call or rely on priority alone.
func (l *Loader) LoadRows(ctx context.Context, userDN string) ([]acl.AclRow, error) {
	var buf bytes.Buffer
	if err := l.filter.Execute(&buf, struct{ UserDN string }{UserDN: userDN}); err != nil {
		return nil, errors.Wrap(err, "ldaprows: rendering assignment filter")
	}

	req := ldap.NewSearchRequest(
		l.c.PolicyBaseDN,
		ldap.ScopeWholeSubtree, ldap.NeverDerefAliases, 0, 0, false,
		buf.String(),
		[]string{
			"aclPolicyName", "aclPermLow", "aclPermHigh",
			"aclScopeDN", "aclScopeType", "aclSelfOnly", "aclDeny", "aclPriority",
			"aclAttrRule",
		},
		nil,
	)

	res, err := l.conn.Search(req)
	if err != nil {
		return nil, errors.Wrap(err, "ldaprows: searching for assignment rows")
	}

	rows := make([]acl.AclRow, 0, len(res.Entries))
	for _, entry := range res.Entries {
		row, err := decodeEntry(entry)
		if err != nil {
			loaderLog.Error(ctx, errors.Wrapf(err, "ldaprows: skipping malformed entry %s", entry.DN))
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// rowFields mirrors the LDAP attributes of one assignment entry. All LDAP
// attribute values arrive as strings, so the decode uses mapstructure's
// weakly-typed mode to parse ints and bools the same way the rest of this
// codebase decodes untyped config maps.
type rowFields struct {
	PolicyName string   `mapstructure:"aclPolicyName"`
	PermLow    int64    `mapstructure:"aclPermLow"`
	PermHigh   int64    `mapstructure:"aclPermHigh"`
	ScopeDN    string   `mapstructure:"aclScopeDN"`
	ScopeType  string   `mapstructure:"aclScopeType"`
	SelfOnly   bool     `mapstructure:"aclSelfOnly"`
	Deny       bool     `mapstructure:"aclDeny"`
	Priority   int16    `mapstructure:"aclPriority"`
	AttrRule   []string `mapstructure:"aclAttrRule"`
}

func decodeEntry(entry *ldap.Entry) (acl.AclRow, error) {
	raw := map[string]interface{}{}
	for _, attr := range entry.Attributes {
		if len(attr.Values) == 1 {
			raw[attr.Name] = attr.Values[0]
		} else {
			raw[attr.Name] = attr.Values
		}
	}

	var fields rowFields
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &fields,
	})
	if err != nil {
		return acl.AclRow{}, err
	}
	if err := decoder.Decode(raw); err != nil {
		return acl.AclRow{}, errors.Wrap(err, "decoding assignment attributes")
	}

	attrRules := make([]acl.AttrRule, 0, len(fields.AttrRule))
	for _, encoded := range fields.AttrRule {
		rule, ok := parseAttrRule(encoded)
		if !ok {
			continue
		}
		attrRules = append(attrRules, rule)
	}

	return acl.AclRow{
		PolicyName: fields.PolicyName,
		PermLow:    fields.PermLow,
		PermHigh:   fields.PermHigh,
		ScopeDN:    strings.ToLower(fields.ScopeDN),
		ScopeType:  fields.ScopeType,
		SelfOnly:   fields.SelfOnly,
		Deny:       fields.Deny,
		Priority:   fields.Priority,
		AttrRules:  attrRules,
	}, nil
}

// parseAttrRule decodes one "objectType:action:ruleType:attr1,attr2,..."
// aclAttrRule value. Malformed encodings are skipped rather than rejecting
// the whole row, matching the core's stance that an unrecognized clause
// must never fail the row it is attached to.
func parseAttrRule(encoded string) (acl.AttrRule, bool) {
	parts := strings.SplitN(encoded, ":", 4)
	if len(parts) != 4 {
		return acl.AttrRule{}, false
	}
	return acl.AttrRule{
		ObjectType: parts[0],
		Action:     parts[1],
		RuleType:   parts[2],
		Attributes: strings.Split(parts[3], ","),
	}, true
}
