package preview

import "testing"

func TestTranslateHandlebars(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "Hello {{ name }}", want: "Hello {{ name }}"},
		{name: "no tags", in: "<p>static</p>", want: "<p>static</p>"},
		{name: "triple stash", in: "{{{location}}}", want: "{{ location|safe }}"},
		{name: "comment", in: "a{{!-- hidden --}}b{{! short }}c", want: "abc"},
		{name: "if else", in: "{{#if vip}}VIP{{else}}Guest{{/if}}", want: "{% if vip %}VIP{% else %}Guest{% endif %}"},
		{name: "unless", in: "{{#unless done}}todo{{/unless}}", want: "{% if not done %}todo{% endif %}"},
		{name: "each", in: "{{#each guests}}{{@index}}:{{this}} {{/each}}", want: "{% for this in guests %}{{ forloop.Counter0 }}:{{this}} {% endfor %}"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := translateHandlebars(tc.in); got != tc.want {
				t.Fatalf("translate(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestRender_HandlebarsBlocks(t *testing.T) {
	r, _ := newRenderer(t)
	if err := r.SetTemplate("{{#if vip}}VIP {{name}}{{else}}Guest{{/if}}"); err != nil {
		t.Fatalf("set template: %v", err)
	}
	if got := r.Render(map[string]any{"vip": true, "name": "Ana"}); got != "VIP Ana" {
		t.Fatalf("unexpected markup %q", got)
	}
	if got := r.Render(map[string]any{"name": "Ana"}); got != "Guest" {
		t.Fatalf("unexpected markup %q", got)
	}
}
