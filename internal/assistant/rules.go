package assistant

// Rules sent as the system instruction for each kind of request.
const (
	CreateRule = "The default response for tasks should be formatted as a JSON object with the following structure: " +
		"- **Title**: Task title. " +
		"- **Description**: A description without phrases like 'The process includes.' " +
		"- **Steps**: A list of steps without sub-numbering, each under 100 characters. " +
		"- **Estimated Total Time**: A time estimate for completion."

	ExpandRule = "When given a JSON input containing 'title', 'description', and 'step_to_expand', " +
		"break the specified step into detailed actions. " +
		"Return a JSON object with the structure: 'Steps' as a list of objects, each containing a 'Description' " +
		"of a detailed action or sub-step. Each step should be under 100 characters. " +
		"Do not include titles or additional descriptions."

	CombineRule = "When given a JSON input containing 'title', 'description', and 'steps_to_combine', " +
		"merge the listed steps into a single, concise step that keeps the essence of all included actions. " +
		"Return a JSON object where 'Step' contains the single combined step, under 100 characters. " +
		"Do not include titles or additional descriptions beyond the combined step."

	AddStepRule = "When given a JSON input containing 'title', 'description', and 'step_to_add', " +
		"rewrite the step so that it clearly and concisely supports the completion of the task described. " +
		"Return it in a JSON object under the key 'step', under 100 characters."

	ContextRule = "When modifying or updating the task breakdown, always respond with a JSON object " +
		"that includes the updated title, description, steps, and estimatedTotalTime. " +
		"Each step should be under 100 characters. " +
		"The JSON must accurately reflect any context changes provided by the user."
)
