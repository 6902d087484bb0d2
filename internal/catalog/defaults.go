package catalog

// defaultDomains are the built-in learning tracks. Topic IDs are stable
// within a domain; renaming a topic keeps its id, removing one retires the
// id permanently.
var defaultDomains = []Domain{
	{
		Name: "DSA",
		Topics: []TopicDef{
			{ID: 1, Name: "Arrays and Strings"},
			{ID: 2, Name: "Linked Lists"},
			{ID: 3, Name: "Stacks and Queues"},
			{ID: 4, Name: "Trees and Graphs"},
			{ID: 5, Name: "Hash Tables"},
			{ID: 6, Name: "Heaps"},
			{ID: 7, Name: "Dynamic Programming"},
			{ID: 8, Name: "Greedy Algorithms"},
			{ID: 9, Name: "Sorting and Searching"},
			{ID: 10, Name: "Recursion and Backtracking"},
			{ID: 11, Name: "Bit Manipulation"},
			{ID: 12, Name: "System Design Basics"},
		},
	},
	{
		Name: "Web Dev",
		Topics: []TopicDef{
			{ID: 1, Name: "Responsive Design"},
			{ID: 2, Name: "RESTful APIs"},
			{ID: 3, Name: "Authentication"},
			{ID: 4, Name: "Deployment"},
			{ID: 5, Name: "Frontend Frameworks"},
			{ID: 6, Name: "Backend Development"},
			{ID: 7, Name: "Database Integration"},
			{ID: 8, Name: "State Management"},
			{ID: 9, Name: "Web Performance"},
			{ID: 10, Name: "Web Security"},
			{ID: 11, Name: "Testing Strategies"},
			{ID: 12, Name: "Progressive Web Apps"},
		},
	},
	{
		Name: "AIML",
		Topics: []TopicDef{
			{ID: 1, Name: "Supervised Learning"},
			{ID: 2, Name: "Unsupervised Learning"},
			{ID: 3, Name: "Neural Networks"},
			{ID: 4, Name: "Reinforcement Learning"},
			{ID: 5, Name: "Computer Vision"},
			{ID: 6, Name: "Natural Language Processing"},
			{ID: 7, Name: "Deep Learning"},
			{ID: 8, Name: "Decision Trees"},
			{ID: 9, Name: "Support Vector Machines"},
			{ID: 10, Name: "Clustering Algorithms"},
			{ID: 11, Name: "Ensemble Methods"},
			{ID: 12, Name: "Model Deployment"},
		},
	},
	{
		Name: "Cloud Computing",
		Topics: []TopicDef{
			{ID: 1, Name: "IaaS"},
			{ID: 2, Name: "PaaS"},
			{ID: 3, Name: "SaaS"},
			{ID: 4, Name: "Cloud Storage"},
			{ID: 5, Name: "Virtual Machines"},
			{ID: 6, Name: "Serverless Computing"},
			{ID: 7, Name: "Networking in Cloud"},
			{ID: 8, Name: "Cloud Security"},
			{ID: 9, Name: "Multi-Cloud Deployment"},
			{ID: 10, Name: "Database-as-a-Service"},
			{ID: 11, Name: "Auto Scaling"},
			{ID: 12, Name: "Cost Management"},
		},
	},
	{
		Name: "Cyber Security",
		Topics: []TopicDef{
			{ID: 1, Name: "Network Security"},
			{ID: 2, Name: "Ethical Hacking"},
			{ID: 3, Name: "Cryptography"},
			{ID: 4, Name: "Vulnerability Assessment"},
			{ID: 5, Name: "Penetration Testing"},
			{ID: 6, Name: "Security Auditing"},
			{ID: 7, Name: "Incident Response"},
			{ID: 8, Name: "Malware Analysis"},
			{ID: 9, Name: "Web Application Security"},
			{ID: 10, Name: "Secure Coding Practices"},
			{ID: 11, Name: "Security Operations"},
			{ID: 12, Name: "Identity & Access Management"},
		},
	},
	{
		Name: "iOS Dev",
		Topics: []TopicDef{
			{ID: 1, Name: "Storyboards"},
			{ID: 2, Name: "Auto Layout"},
			{ID: 3, Name: "Core Data"},
			{ID: 4, Name: "App Store Deployment"},
			{ID: 5, Name: "Swift Fundamentals"},
			{ID: 6, Name: "UIKit Components"},
			{ID: 7, Name: "SwiftUI"},
			{ID: 8, Name: "Networking & APIs"},
			{ID: 9, Name: "TableViews & CollectionViews"},
			{ID: 10, Name: "Push Notifications"},
			{ID: 11, Name: "User Authentication"},
			{ID: 12, Name: "App Lifecycle"},
		},
	},
	{
		Name: "UI/UX",
		Topics: []TopicDef{
			{ID: 1, Name: "User Research"},
			{ID: 2, Name: "Wireframing"},
			{ID: 3, Name: "Prototyping"},
			{ID: 4, Name: "Interaction Design"},
			{ID: 5, Name: "Visual Design"},
			{ID: 6, Name: "Usability Testing"},
			{ID: 7, Name: "Design Systems"},
			{ID: 8, Name: "Information Architecture"},
			{ID: 9, Name: "Accessibility"},
			{ID: 10, Name: "User Flows"},
			{ID: 11, Name: "Design Thinking"},
			{ID: 12, Name: "A/B Testing"},
		},
	},
	{
		Name: "Aptitude",
		Topics: []TopicDef{
			{ID: 1, Name: "Quantitative Aptitude"},
			{ID: 2, Name: "Logical Reasoning"},
			{ID: 3, Name: "Verbal Ability"},
			{ID: 4, Name: "Time and Work"},
			{ID: 5, Name: "Ratio and Proportion"},
			{ID: 6, Name: "Percentage"},
			{ID: 7, Name: "Profit and Loss"},
			{ID: 8, Name: "Simple and Compound Interest"},
			{ID: 9, Name: "Number Systems"},
			{ID: 10, Name: "Data Interpretation"},
			{ID: 11, Name: "Permutation and Combination"},
			{ID: 12, Name: "Probability"},
		},
	},
}
