package rewrite

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tristendillon/tsfix/core/config"
)

func defaultAliasFixer() *AliasFixer {
	return NewAliasFixer(config.Default().Aliases)
}

func TestAliasFixerLibCategory(t *testing.T) {
	in := `import type { Schema } from "@/types/schema/definition";
import { cn } from '@/lib/utils';
import { Button } from "@/components/ui/button";
import { z } from "zod";
`
	want := `import type { Schema } from "../../types/schema/definition";
import { cn } from '../utils';
import { Button } from "../../components/ui/button";
import { z } from "zod";
`
	out, changed := defaultAliasFixer().Fix("lib/state/store.ts", in)
	require.True(t, changed)
	require.Equal(t, want, out)
}

func TestAliasFixerUICategory(t *testing.T) {
	in := `import { Badge } from "@/components/ui/badge";
import type { Props } from "@/types/component-helpers";
import { cn } from "@/lib/utils";
export { Card } from "@/components/ui/card";
`
	want := `import { Badge } from "./badge";
import type { Props } from "../../types/component-helpers";
import { cn } from "../../lib/utils";
export { Card } from "./card";
`
	out, changed := defaultAliasFixer().Fix("components/ui/dialog/dialog.tsx", in)
	require.True(t, changed)
	require.Equal(t, want, out)
}

func TestAliasFixerOtherPathsOnlyFixMalformed(t *testing.T) {
	in := `import { useData } from ["@/hooks/use-data"];
import type { Schema } from "@/types/schema/definition";
`
	want := `import { useData } from "@/hooks/use-data";
import type { Schema } from "@/types/schema/definition";
`
	out, changed := defaultAliasFixer().Fix("hooks/use-data-sources.ts", in)
	require.True(t, changed)
	require.Equal(t, want, out)
}

func TestAliasFixerMalformedFrom(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"double quotes with closing bracket", `import a from ["./a"];`, `import a from "./a";`},
		{"single quote without closing bracket", `import a from ['./a';`, `import a from './a';`},
		{"spaces inside bracket", `import a from [ "./a" ];`, `import a from "./a";`},
		{"call is untouched", `const xs = Array.from(["a", "b"]);`, `const xs = Array.from(["a", "b"]);`},
		{"plain import untouched", `import a from "./a";`, `import a from "./a";`},
	}
	af := defaultAliasFixer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _ := af.Fix("hooks/x.ts", tt.in)
			require.Equal(t, tt.want, out)
		})
	}
}

func TestAliasFixerMalformedDisabled(t *testing.T) {
	cfg := config.Default().Aliases
	cfg.FixMalformedFrom = false
	in := `import a from ["./a"];`

	out, changed := NewAliasFixer(cfg).Fix("hooks/x.ts", in)
	require.False(t, changed)
	require.Equal(t, in, out)
}

func TestAliasFixerIsIdempotent(t *testing.T) {
	af := defaultAliasFixer()
	inputs := map[string]string{
		"lib/theme/theme.ts":           `import { x } from "@/types/x"; import { y } from "@/lib/y"; import { z } from "@/components/z";`,
		"components/ui/tabs/tabs.tsx":  `import { x } from "@/components/ui/x"; import { t } from "@/types/t"; import { l } from "@/lib/l";`,
		"components/blocks/hero/a.tsx": `import { x } from "@/components/ui/x";`,
	}
	for rel, in := range inputs {
		once, _ := af.Fix(rel, in)
		twice, changed := af.Fix(rel, once)
		require.False(t, changed, rel)
		require.Equal(t, once, twice, rel)
	}
}

func TestAliasFixerCategoryPrecedence(t *testing.T) {
	af := defaultAliasFixer()
	in := `import { x } from "@/lib/x";`
	tests := map[string]string{
		"lib/render.tsx":                      `import { x } from "../x";`,
		"components/ui/button/button.tsx":     `import { x } from "../../lib/x";`,
		"components/ui/lib/helpers.ts":        `import { x } from "../x";`,
		"library/x.ts":                        in,
		"components/blocks/header/header.tsx": in,
	}
	for rel, want := range tests {
		out, _ := af.Fix(rel, in)
		require.Equal(t, want, out, rel)
	}
	require.Equal(t, "aliases", af.Name())
}

func TestAliasFixerReplacementIsLiteral(t *testing.T) {
	cfg := config.Aliases{Categories: []config.Category{{
		Name:     "odd",
		Marker:   "odd",
		Rewrites: []config.Rewrite{{From: "@/x/", To: "$1/"}},
	}}}
	out, changed := NewAliasFixer(cfg).Fix("odd/a.ts", `import a from "@/x/a";`)
	require.True(t, changed)
	require.Equal(t, `import a from "$1/a";`, out)
}
