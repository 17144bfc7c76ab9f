package deploy

import (
	"fmt"
	"path"

	"github.com/williamokano/docdeploy/pkg/config"
)

// DefaultRepoURL is the repository the server clones gh-pages from
const DefaultRepoURL = "https://github.com/A2C-SMCP/a2c-smcp-protocol.git"

// GuideStep is one manual step of the server setup
type GuideStep struct {
	Title    string
	Commands []string
}

// ServerSetupGuide lists what has to be done on the server once before the
// first deploy, filled in from the configured host and deploy path
func ServerSetupGuide(cfg config.ServerConfig, repoURL string) []GuideStep {
	if repoURL == "" {
		repoURL = DefaultRepoURL
	}

	host := cfg.Host
	if host == "" {
		host = "<YOUR_SERVER_IP>"
	}
	user := cfg.User
	if user == "" {
		user = config.DefaultUser
	}
	deployPath := cfg.DeployPath
	if deployPath == "" {
		deployPath = config.DefaultDeployPath
	}

	siteRoot := path.Dir(deployPath)
	name := path.Base(deployPath)
	domain := path.Base(siteRoot)

	login := fmt.Sprintf("ssh %s@%s", user, host)
	if cfg.Port != 0 && cfg.Port != config.DefaultPort {
		login = fmt.Sprintf("ssh -p %d %s@%s", cfg.Port, user, host)
	}

	return []GuideStep{
		{
			Title:    "Log in to the server",
			Commands: []string{login},
		},
		{
			Title: "Create the docs directory and clone the gh-pages branch",
			Commands: []string{
				"cd " + siteRoot + "/",
				fmt.Sprintf("git clone -b gh-pages %s %s", repoURL, name),
				"chown -R nginx:nginx " + deployPath,
				"chmod -R 755 " + deployPath,
			},
		},
		{
			Title: fmt.Sprintf("Update the Nginx config (/etc/nginx/conf.d/%s.conf)", domain),
			Commands: []string{
				fmt.Sprintf("add a location /%s/ block", name),
			},
		},
		{
			Title: fmt.Sprintf("Update the portal page (%s/index.html)", siteRoot),
			Commands: []string{
				fmt.Sprintf("add a link to the /%s/ docs", name),
			},
		},
		{
			Title:    "Reload Nginx",
			Commands: []string{"nginx -t && systemctl reload nginx"},
		},
	}
}
