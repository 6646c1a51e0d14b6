package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/cqroot/prompt"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"

	"starlings/gazetteer"
	"starlings/geocoder"
	"starlings/models"
	"starlings/moderation"
	"starlings/resolver"
)

// submitCmd represents the submit command
func submitCmd() *cli.Command {
	return &cli.Command{
		Name:  "submit",
		Usage: "Submit a note to the moderation queue",
		Description: `Walks through the share form interactively and submits the
result to the moderation backend's pending queue.

The same guided prompts, location search and safety confirmations
apply as on the web form.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "backend-url",
				Aliases: []string{"b"},
				Usage:   "URL of the moderation backend",
				EnvVars: []string{"STARLINGS_BACKEND_URL"},
			},
			&cli.StringFlag{
				Name:    "geocoder-url",
				Usage:   "URL of the remote geocoder",
				EnvVars: []string{"STARLINGS_GEOCODER_URL"},
			},
		},
		Action: func(ctx *cli.Context) error {
			backendURL := ctx.String("backend-url")
			if backendURL == "" {
				return errors.New("please specify the moderation backend URL")
			}

			promptA, err := prompt.New().Ask("One thing that helped me was:").Input("")
			if err != nil {
				return err
			}

			promptB, err := prompt.New().Ask("A message I'd tell someone else is:").Input("")
			if err != nil {
				return err
			}

			promptC, err := prompt.New().Ask("A support or system that helped was (optional):").Input("")
			if err != nil {
				return err
			}

			query, err := prompt.New().Ask("Your city:").Input("Toronto")
			if err != nil {
				return err
			}

			r := resolver.New(gazetteer.New(), geocoder.NewClient(geocoder.Config{
				BaseURL: ctx.String("geocoder-url"),
			}))
			candidates := r.ResolveAll(ctx.Context, query)
			if len(candidates) == 0 {
				return fmt.Errorf("no location found for %q", query)
			}

			names := lo.Map(candidates, func(c models.LocationCandidate, _ int) string {
				return c.DisplayName
			})
			chosen, err := prompt.New().Ask("Select your location:").Choose(names)
			if err != nil {
				return err
			}
			location, _ := lo.Find(candidates, func(c models.LocationCandidate) bool {
				return c.DisplayName == chosen
			})

			tags, err := prompt.New().Ask("What helped?").MultiChoose(moderation.HelpOptions())
			if err != nil {
				return err
			}

			confirm := func(question string) (bool, error) {
				answer, err := prompt.New().Ask(question).Choose([]string{"yes", "no"})
				return answer == "yes", err
			}

			confirmAge, err := confirm("I confirm I am 18+ years old:")
			if err != nil {
				return err
			}
			confirmNoDetails, err := confirm("My note contains no names, contact details or identifying information:")
			if err != nil {
				return err
			}
			confirmReviewed, err := confirm("I have reviewed my note and it is supportive in tone:")
			if err != nil {
				return err
			}

			submission := moderation.Submission{
				PromptA:          promptA,
				PromptB:          promptB,
				PromptC:          promptC,
				Location:         &location,
				WhatHelped:       tags,
				ConfirmAge:       confirmAge,
				ConfirmNoDetails: confirmNoDetails,
				ConfirmReviewed:  confirmReviewed,
			}
			if err := submission.Validate(); err != nil {
				return err
			}

			post := submission.BuildPost()
			if post.Flagged {
				fmt.Println("Note: your message matches a safety filter and will be flagged for review.")
			}

			client := moderation.NewClient(backendURL, 10*time.Second)
			result, err := client.Submit(ctx.Context, post)
			if err != nil {
				return fmt.Errorf("could not submit note: %w", err)
			}

			if result.Success {
				fmt.Println("Note received. It will appear on the map once approved.")
			} else {
				fmt.Println("The backend did not accept the note.")
			}

			return nil
		},
	}
}
