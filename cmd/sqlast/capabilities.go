package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/zoobzio/sqlast"
	"github.com/zoobzio/sqlast/internal/render"
)

func newCapabilitiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "capabilities",
		Short: "Print the capabilities of a dialect version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, _, err := openDialect(cmd)
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(capabilitiesOf(d))
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

type capabilitiesView struct {
	Dialect               string   `yaml:"dialect"`
	RowValueConstructor   bool     `yaml:"row_value_constructor"`
	RowValueInList        bool     `yaml:"row_value_in_list"`
	RowValueInQuantified  bool     `yaml:"row_value_in_quantified"`
	OffsetFetch           bool     `yaml:"offset_fetch"`
	FetchFirst            bool     `yaml:"fetch_first"`
	LimitOffset           bool     `yaml:"limit_offset"`
	ParameterOffsetFetch  bool     `yaml:"parameter_offset_fetch"`
	FetchPercent          bool     `yaml:"fetch_percent"`
	FetchTies             bool     `yaml:"fetch_ties"`
	WindowFunctions       bool     `yaml:"window_functions"`
	WithInSubquery        bool     `yaml:"with_in_subquery"`
	RecursiveKeyword      bool     `yaml:"recursive_keyword"`
	PredicateAsExpression bool     `yaml:"predicate_as_expression"`
	Lateral               bool     `yaml:"lateral"`
	Summarization         bool     `yaml:"summarization"`
	SetOperationParens    bool     `yaml:"set_operation_parens"`
	SkipLocked            bool     `yaml:"skip_locked"`
	NoWait                bool     `yaml:"nowait"`
	LockTimeout           bool     `yaml:"lock_timeout"`
	Returning             []string `yaml:"returning,flow"`
	RowLocking            string   `yaml:"row_locking"`
	DistinctFrom          string   `yaml:"distinct_from"`
}

func capabilitiesOf(d sqlast.Dialect) capabilitiesView {
	c := d.Capabilities()
	v := capabilitiesView{
		Dialect:               fmt.Sprintf("%s %s", d.Name(), d.Version()),
		RowValueConstructor:   c.RowValueConstructor,
		RowValueInList:        c.RowValueInList,
		RowValueInQuantified:  c.RowValueInQuantified,
		OffsetFetch:           c.OffsetFetch,
		FetchFirst:            c.FetchFirst,
		LimitOffset:           c.LimitOffset,
		ParameterOffsetFetch:  c.ParameterOffsetFetch,
		FetchPercent:          c.FetchPercent,
		FetchTies:             c.FetchTies,
		WindowFunctions:       c.WindowFunctions,
		WithInSubquery:        c.WithInSubquery,
		RecursiveKeyword:      c.RecursiveKeyword,
		PredicateAsExpression: c.PredicateAsExpression,
		Lateral:               c.Lateral,
		Summarization:         c.Summarization,
		SetOperationParens:    c.SetOperationParens,
		SkipLocked:            c.SkipLocked,
		NoWait:                c.NoWait,
		LockTimeout:           c.LockTimeout,
		Returning:             []string{},
	}

	for _, r := range []struct {
		kind string
		bit  render.ReturningSupport
	}{
		{"insert", render.ReturningInsert},
		{"update", render.ReturningUpdate},
		{"delete", render.ReturningDelete},
	} {
		if c.Returning&r.bit != 0 {
			v.Returning = append(v.Returning, r.kind)
		}
	}

	switch c.RowLocking {
	case render.RowLockingNone:
		v.RowLocking = "none"
	case render.RowLockingBasic:
		v.RowLocking = "for update"
	case render.RowLockingFull:
		v.RowLocking = "for update, for share"
	}

	switch c.DistinctFrom {
	case render.DistinctFromCaseWhen:
		v.DistinctFrom = "case when"
	case render.DistinctFromNative:
		v.DistinctFrom = "native"
	case render.DistinctFromNullSafeEquals:
		v.DistinctFrom = "null-safe equals"
	case render.DistinctFromIs:
		v.DistinctFrom = "is"
	case render.DistinctFromDecode:
		v.DistinctFrom = "decode"
	}
	return v
}
