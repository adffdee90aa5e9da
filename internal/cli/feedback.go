package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stewardhq/steward/internal/feedback"
	"github.com/stewardhq/steward/internal/model"
)

var (
	fbOrg      string
	fbPlan     string
	fbContact  string
	fbSource   string
	fbKind     string
	fbRating   int
	fbText     string
	fbCategory string
	fbFactors  []string
)

func init() {
	rootCmd.AddCommand(feedbackCmd)
	feedbackCmd.AddCommand(feedbackSubmitCmd)
	feedbackCmd.AddCommand(feedbackProcessCmd)

	feedbackSubmitCmd.Flags().StringVar(&fbOrg, "org", "", "Organization id (required)")
	feedbackSubmitCmd.Flags().StringVar(&fbPlan, "plan", "", "Action plan id (required)")
	feedbackSubmitCmd.Flags().StringVar(&fbContact, "contact", "", "Contact id")
	feedbackSubmitCmd.Flags().StringVar(&fbSource, "source", "human", "Source: human, customer, system, or outcome")
	feedbackSubmitCmd.Flags().StringVar(&fbKind, "kind", "decision_quality", "Feedback kind")
	feedbackSubmitCmd.Flags().IntVar(&fbRating, "rating", 0, "Rating 1-5 (required)")
	feedbackSubmitCmd.Flags().StringVar(&fbText, "text", "", "Free-text comment")
	feedbackSubmitCmd.Flags().StringVar(&fbCategory, "category", "", "Feedback category")
	feedbackSubmitCmd.Flags().StringSliceVar(&fbFactors, "factor", nil, "Context factor (repeatable)")
	feedbackSubmitCmd.MarkFlagRequired("org")
	feedbackSubmitCmd.MarkFlagRequired("plan")
	feedbackSubmitCmd.MarkFlagRequired("rating")

	feedbackProcessCmd.Flags().StringVar(&fbOrg, "org", "", "Organization id (required)")
	feedbackProcessCmd.MarkFlagRequired("org")
}

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Submit and process decision feedback",
}

var feedbackSubmitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit one feedback signal about a past decision",
	RunE:  runFeedbackSubmit,
}

var feedbackProcessCmd = &cobra.Command{
	Use:   "process",
	Short: "Process the organization's unprocessed feedback backlog",
	RunE:  runFeedbackProcess,
}

func runFeedbackSubmit(cmd *cobra.Command, args []string) error {
	if fbRating < 1 || fbRating > 5 {
		return fmt.Errorf("rating must be between 1 and 5, got %d", fbRating)
	}

	v, err := newEnv()
	if err != nil {
		return err
	}
	defer v.close()

	fb, err := v.loop().Collect(feedback.CollectRequest{
		OrganizationID: fbOrg,
		ActionPlanID:   fbPlan,
		ContactID:      fbContact,
		Source:         model.FeedbackSource(fbSource),
		Kind:           model.FeedbackKind(fbKind),
		Rating:         fbRating,
		Details: model.FeedbackDetails{
			Category:       fbCategory,
			Text:           fbText,
			ContextFactors: fbFactors,
		},
	})
	if err != nil {
		return err
	}

	state := "queued for processing"
	if fb.Processed {
		state = "processed immediately"
	}
	fmt.Printf("Feedback %s recorded (confidence %.2f, %s)\n", fb.ID, fb.Confidence, state)
	return nil
}

func runFeedbackProcess(cmd *cobra.Command, args []string) error {
	v, err := newEnv()
	if err != nil {
		return err
	}
	defer v.close()

	n, err := v.loop().ProcessBacklog(fbOrg)
	if err != nil {
		return err
	}
	fmt.Printf("Processed %d feedback entries.\n", n)
	return nil
}
