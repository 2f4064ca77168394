package menu

import (
	_ "embed"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/vince123890/website-kasir/internal/rbac"
)

//go:embed menus.yaml
var defaultConfig []byte

type nodeConfig struct {
	Label      string            `yaml:"label" validate:"required"`
	Route      string            `yaml:"route" validate:"required_without=Children"`
	Icon       string            `yaml:"icon"`
	Permission string            `yaml:"permission"`
	Query      map[string]string `yaml:"query"`
	Badge      string            `yaml:"badge"`
	Children   []nodeConfig      `yaml:"children" validate:"omitempty,dive"`
}

// LoadDefault parses the embedded menu configuration.
func LoadDefault(logger *slog.Logger) (Trees, error) {
	return Load(defaultConfig, logger)
}

// Load parses a YAML document keyed by role name. Unknown roles and invalid
// nodes are errors; unknown badge names are logged and dropped.
func Load(data []byte, logger *slog.Logger) (Trees, error) {
	var raw map[string][]nodeConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("menu: parse config: %w", err)
	}
	validate := validator.New()
	trees := make(Trees, len(raw))
	for name, nodes := range raw {
		role, ok := rbac.ParseRole(name)
		if !ok {
			return nil, fmt.Errorf("menu: unknown role %q", name)
		}
		for i := range nodes {
			if err := validate.Struct(nodes[i]); err != nil {
				return nil, fmt.Errorf("menu: role %q item %d: %w", name, i, err)
			}
		}
		trees[role] = convert(nodes, logger)
	}
	return trees, nil
}

func convert(nodes []nodeConfig, logger *slog.Logger) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		kind, ok := ParseBadgeKind(n.Badge)
		if !ok && logger != nil {
			logger.Warn("menu: unknown badge ignored", slog.String("badge", n.Badge), slog.String("label", n.Label))
		}
		node := Node{
			Label:      n.Label,
			Route:      n.Route,
			Icon:       n.Icon,
			Permission: n.Permission,
			Query:      n.Query,
			Badge:      kind,
		}
		if len(n.Children) > 0 {
			node.Children = convert(n.Children, logger)
		}
		out = append(out, node)
	}
	return out
}
