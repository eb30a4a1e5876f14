/*
Package planner implements the decision-making actor.

On a passed utterance the Planner asks the Advisor for a Decision (answer directly, ask a
clarifying question, or execute a plan) and validates it against the capability catalogue.
Anything the Advisor returns that cannot be used, including transport errors, becomes an
apologetic RespondDirectly so a session never stalls.

Once every step has run, the coordinator sends a synthesis request. The Planner passes the
aggregate outcome to the Advisor as a tone hint and falls back to a text assembled from the
step data when the Advisor is unavailable.
*/
package planner
